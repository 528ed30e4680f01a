package httpapi

import (
	"encoding/json"
	"net/http"

	"soundshare/shared/go/models"
)

type signupRequest struct {
	Username  string `json:"username"`
	Password  string `json:"pass"`
	Password2 string `json:"pass2"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"pass"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPass"`
	NewPassword string `json:"newPass"`
}

type tokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type loginStatusResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	Username string `json:"username,omitempty"`
}

type subscriptionRequest struct {
	Subscribed *bool `json:"subscribed"`
}

type subscriptionResponse struct {
	Subscribed bool `json:"subscribed"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	account, err := s.users.Signup(r.Context(), req.Username, req.Password, req.Password2)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(account.Username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: token, Username: account.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	account, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(account.Username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token, Username: account.Username})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := s.identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := s.users.ChangePassword(r.Context(), username, req.OldPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleCheckLogin reports whether the request carries a valid identity.
// Anonymous callers get loggedIn=false, never an error.
func (s *Server) handleCheckLogin(w http.ResponseWriter, r *http.Request) {
	username, ok := s.identity(r)
	if !ok {
		writeJSON(w, http.StatusOK, loginStatusResponse{LoggedIn: false})
		return
	}
	writeJSON(w, http.StatusOK, loginStatusResponse{LoggedIn: true, Username: username})
}

func (s *Server) handleCheckPremium(w http.ResponseWriter, r *http.Request) {
	username, ok := s.identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	subscribed, err := s.subscriptions.Status(r.Context(), username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, subscriptionResponse{Subscribed: subscribed})
}

func (s *Server) handleUpdatePremium(w http.ResponseWriter, r *http.Request) {
	username, ok := s.identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	subscribed, err := s.subscriptions.Toggle(r.Context(), username, req.Subscribed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, subscriptionResponse{Subscribed: subscribed})
}

func (s *Server) handleSearchUser(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.users.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if accounts == nil {
		accounts = []models.AccountSummary{}
	}
	writeJSON(w, http.StatusOK, struct {
		SearchResult []models.AccountSummary `json:"searchResult"`
	}{SearchResult: accounts})
}
