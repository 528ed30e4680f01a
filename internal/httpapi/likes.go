package httpapi

import (
	"encoding/json"
	"net/http"
)

type updateLikedRequest struct {
	ID string `json:"id"`
	// Liked is a pointer so an explicit false survives decoding; a naive
	// truthiness check would conflate "unlike" with "field missing".
	Liked *bool `json:"liked"`
}

type likedResponse struct {
	Liked bool `json:"liked"`
}

func (s *Server) handleCheckLike(w http.ResponseWriter, r *http.Request) {
	username, ok := s.identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	liked, err := s.likes.IsLiked(r.Context(), username, r.URL.Query().Get("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, likedResponse{Liked: liked})
}

func (s *Server) handleUpdateLiked(w http.ResponseWriter, r *http.Request) {
	username, ok := s.identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	var req updateLikedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	liked, err := s.likes.Toggle(r.Context(), username, req.ID, req.Liked)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, likedResponse{Liked: liked})
}

func (s *Server) handleLikedSongs(w http.ResponseWriter, r *http.Request) {
	username, ok := s.identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	ids, err := s.likes.ListIDs(r.Context(), username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, struct {
		IDs []string `json:"ids"`
	}{IDs: ids})
}
