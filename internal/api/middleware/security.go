package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Fantasim/sazonframe/internal/config"
	"github.com/Fantasim/sazonframe/internal/models"
)

// CORS lets frame clients and their debuggers call the frame endpoints from
// any origin. Frame requests carry no cookies, so credentials are not allowed.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Origin") != "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// BodyLimit rejects requests whose declared body exceeds limit bytes and caps
// reads of the rest.
func BodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				slog.Warn("rejected oversized request",
					"path", r.URL.Path,
					"contentLength", r.ContentLength,
					"limit", limit,
					"remoteAddr", r.RemoteAddr,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				json.NewEncoder(w).Encode(models.APIError{
					Error: models.APIErrorDetail{
						Code:    config.ErrorRequestTooLarge,
						Message: fmt.Sprintf("request body exceeds %d bytes", limit),
					},
				})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
