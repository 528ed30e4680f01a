package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"soundshare/shared/go/models"
)

type deleteSongRequest struct {
	ID string `json:"id"`
}

type uploadResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

type songListResponse struct {
	Songs []models.SongSummary `json:"songs"`
}

func (s *Server) handleUploadSong(w http.ResponseWriter, r *http.Request) {
	username, ok := s.identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart payload"})
		return
	}

	up := models.Upload{Name: r.FormValue("fileName")}

	file, header, err := r.FormFile("songFile")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable file payload"})
			return
		}
		up.Data = data
		up.Filename = header.Filename
		up.Size = header.Size
		up.ContentType = header.Header.Get("Content-Type")
	}

	song, err := s.songs.Upload(r.Context(), username, up)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{ID: song.ID, Filename: song.Filename})
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	username, ok := s.identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	var req deleteSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	name, err := s.songs.Delete(r.Context(), username, req.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: fmt.Sprintf("Successfully Deleted %s", name)})
}

// handleRetrieveSong streams the stored MP3 payload back to the client.
func (s *Server) handleRetrieveSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.songs.Get(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.FormatInt(song.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("filename=%q", song.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(song.Data)
}

func (s *Server) handleUserSongs(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	requester, authed := s.identity(r)

	if user == "" {
		if !authed {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no user provided"})
			return
		}
		user = requester
	}

	songs, err := s.songs.ByUser(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if songs == nil {
		songs = []models.SongSummary{}
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []models.SongSummary `json:"songs"`
		Owner bool                 `json:"owner"`
	}{Songs: songs, Owner: authed && requester == user})
}

// handleSongName resolves a song id to its display name. A deleted song
// yields a null name, not an error, so stale liked-song lists render cleanly.
func (s *Server) handleSongName(w http.ResponseWriter, r *http.Request) {
	name, found, err := s.songs.Name(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var songName *string
	if found {
		songName = &name
	}
	writeJSON(w, http.StatusOK, struct {
		SongName *string `json:"songName"`
	}{SongName: songName})
}

func (s *Server) handleRandomSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.songs.Random(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if songs == nil {
		songs = []models.SongSummary{}
	}
	writeJSON(w, http.StatusOK, songListResponse{Songs: songs})
}

func (s *Server) handleSearchSong(w http.ResponseWriter, r *http.Request) {
	songs, err := s.songs.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if songs == nil {
		songs = []models.SongSummary{}
	}
	writeJSON(w, http.StatusOK, struct {
		SearchResult []models.SongSummary `json:"searchResult"`
	}{SearchResult: songs})
}
