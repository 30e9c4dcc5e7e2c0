// Package api serves reports and the FX session over HTTP.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured. When
// adminAPIKey is set, POST /api/v1/fx/refresh requires it as a bearer token.
func NewServer(port string, handler *Handler, adminAPIKey string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/report", handler.GetReport)
	mux.HandleFunc("GET /api/v1/report/latest", handler.GetLatestReport)
	mux.HandleFunc("GET /api/v1/history", handler.GetHistory)
	mux.HandleFunc("GET /api/v1/fx", handler.GetFX)

	refreshHandler := http.HandlerFunc(handler.RefreshFX)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/fx/refresh", requireAuth(adminAPIKey, refreshHandler))
	} else {
		mux.Handle("POST /api/v1/fx/refresh", refreshHandler)
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
