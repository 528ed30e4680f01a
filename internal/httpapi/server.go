package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"soundshare/internal/app/likes"
	"soundshare/internal/app/songs"
	"soundshare/internal/app/subscriptions"
	"soundshare/internal/app/users"
	"soundshare/internal/auth"
	"soundshare/internal/store"
	"soundshare/shared/go/logging"
	"soundshare/shared/go/models"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password, password2 string) (models.Account, error)
	Login(ctx context.Context, username, password string) (models.Account, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	Search(ctx context.Context, term string) ([]models.AccountSummary, error)
}

// SongService coordinates upload admission, deletion, retrieval, and search.
type SongService interface {
	Upload(ctx context.Context, owner string, up models.Upload) (models.Song, error)
	Delete(ctx context.Context, requester, id string) (string, error)
	Get(ctx context.Context, id string) (models.Song, error)
	Name(ctx context.Context, id string) (string, bool, error)
	ByUser(ctx context.Context, owner string) ([]models.SongSummary, error)
	Search(ctx context.Context, term string) ([]models.SongSummary, error)
	Random(ctx context.Context) ([]models.SongSummary, error)
}

// LikeService coordinates liked-song workflows.
type LikeService interface {
	Toggle(ctx context.Context, username, songID string, liked *bool) (bool, error)
	IsLiked(ctx context.Context, username, songID string) (bool, error)
	ListIDs(ctx context.Context, username string) ([]string, error)
}

// SubscriptionService coordinates premium subscription workflows.
type SubscriptionService interface {
	Toggle(ctx context.Context, username string, subscribed *bool) (bool, error)
	Status(ctx context.Context, username string) (bool, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users         UserService
	songs         SongService
	likes         LikeService
	subscriptions SubscriptionService
	tokens        *auth.TokenManager
	maxUploadSize int64
}

// New configures a Server over the given services and token manager.
func New(
	users UserService,
	songs SongService,
	likes LikeService,
	subscriptions SubscriptionService,
	tokens *auth.TokenManager,
	maxUploadSize int64,
) *Server {
	return &Server{
		users:         users,
		songs:         songs,
		likes:         likes,
		subscriptions: subscriptions,
		tokens:        tokens,
		maxUploadSize: maxUploadSize,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Account routes
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /changePass", s.handleChangePassword)
	mux.HandleFunc("GET /checkLogin", s.handleCheckLogin)

	// Song routes
	mux.HandleFunc("POST /songUp", s.handleUploadSong)
	mux.HandleFunc("POST /deleteSong", s.handleDeleteSong)
	mux.HandleFunc("GET /retrieve", s.handleRetrieveSong)
	mux.HandleFunc("GET /retrieveUser", s.handleUserSongs)
	mux.HandleFunc("GET /getSongName", s.handleSongName)
	mux.HandleFunc("GET /getRandomSongs", s.handleRandomSongs)

	// Liked song routes
	mux.HandleFunc("GET /checkLike", s.handleCheckLike)
	mux.HandleFunc("POST /updateLiked", s.handleUpdateLiked)
	mux.HandleFunc("GET /likedSongs", s.handleLikedSongs)

	// Premium subscription routes
	mux.HandleFunc("GET /checkPremium", s.handleCheckPremium)
	mux.HandleFunc("POST /updatePremium", s.handleUpdatePremium)

	// Search routes
	mux.HandleFunc("GET /searchSong", s.handleSearchSong)
	mux.HandleFunc("GET /searchUser", s.handleSearchUser)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// identity resolves the bearer token to a username. The handlers trust the
// resolved value; credentials are never re-verified here.
func (s *Server) identity(r *http.Request) (string, bool) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return "", false
	}
	username, err := s.tokens.Verify(token)
	if err != nil {
		return "", false
	}
	return username, true
}

// statusForError maps service and store sentinels onto HTTP statuses.
// Unrecognized errors are persistence or invariant failures and map to 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, users.ErrMissingFields),
		errors.Is(err, users.ErrPasswordMismatch),
		errors.Is(err, users.ErrMissingSearch),
		errors.Is(err, songs.ErrMissingFile),
		errors.Is(err, songs.ErrMissingName),
		errors.Is(err, songs.ErrMissingID),
		errors.Is(err, songs.ErrSearchTooShort),
		errors.Is(err, likes.ErrMissingID),
		errors.Is(err, likes.ErrMissingState),
		errors.Is(err, subscriptions.ErrMissingState),
		errors.Is(err, store.ErrQuotaExceeded):
		return http.StatusBadRequest
	case errors.Is(err, songs.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrSongNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUserExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= 500 {
		logging.Error(err, "request failed")
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
