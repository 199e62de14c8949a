package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/petpalfinder/backend/internal/logging"
)

// APIKeyHeader carries the caller's key.
const APIKeyHeader = "X-API-Key"

// APIKey rejects requests whose X-API-Key does not match the bcrypt hash. An
// empty hash disables the check.
func APIKey(hash string) func(http.Handler) http.Handler {
	hash = strings.TrimSpace(hash)
	return func(next http.Handler) http.Handler {
		if hash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(APIKeyHeader))
			if key == "" {
				writeError(w, http.StatusUnauthorized, "missing api key")
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
				logging.FromContext(r.Context()).Warn("api key rejected", "client_ip", ClientIP(r))
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so the first wraps outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
