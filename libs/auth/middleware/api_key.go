package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyMiddleware guards machine-to-machine endpoints with the X-API-Key header
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	expected := []byte(apiKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := []byte(r.Header.Get("X-API-Key"))
			if len(expected) == 0 || len(provided) == 0 || subtle.ConstantTimeCompare(provided, expected) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid or missing API key", "unauthenticated")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
