package middleware

import (
	"crypto/subtle"
	"net/http"

	"goldrush-game-api/pkg/apierror"
)

// NewAdminAuth creates a middleware that gates the admin endpoints
// behind a shared password carried in the X-Admin-Pass header.
func NewAdminAuth(password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Admin-Pass")
			if provided == "" {
				writeError(w, apierror.Unauthorized("X-Admin-Pass header required"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(password)) != 1 {
				writeError(w, apierror.Unauthorized("invalid admin password"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}
