// Package auth provides HTTP middleware for API key and JWT-based admin
// authentication.
package auth

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader is the request header carrying the caller's API key.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey returns middleware that rejects requests whose API key
// header matches none of the configured keys. An empty key list disables
// the check, which is the expected state in local development.
func RequireAPIKey(keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(keys) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(APIKeyHeader)
			if provided == "" {
				http.Error(w, "missing api key", http.StatusUnauthorized)
				return
			}
			for _, key := range keys {
				if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "invalid api key", http.StatusUnauthorized)
		})
	}
}
