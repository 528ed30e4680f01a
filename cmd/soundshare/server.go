package main

import (
	"net/http"
	"strings"

	"soundshare/internal/app/likes"
	"soundshare/internal/app/songs"
	"soundshare/internal/app/subscriptions"
	"soundshare/internal/app/users"
	"soundshare/internal/auth"
	"soundshare/internal/httpapi"
	"soundshare/internal/store"
	"soundshare/shared/go/middleware"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	userSvc := users.New(dataStore)
	songSvc := songs.New(dataStore)
	likeSvc := likes.New(dataStore)
	subscriptionSvc := subscriptions.New(dataStore)

	tokens := auth.NewTokenManager(cfg.JWTSecret)

	api := httpapi.New(userSvc, songSvc, likeSvc, subscriptionSvc, tokens, cfg.MaxUploadSize)

	handler := api.Routes()
	handler = withCORS(cfg.AllowedOrigins, handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
