package main

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// adminOnly guards the admin routes with the configured bearer token. An
// empty token disables the routes entirely.
func (s *server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			writeJSON(w, http.StatusForbidden, errorMessage("admin endpoints are disabled"))
			return
		}

		if !validToken(r.Header.Get("Authorization"), s.adminToken) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			writeJSON(w, http.StatusUnauthorized, errorMessage("invalid or missing admin token"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func validToken(header, token string) bool {
	if !strings.HasPrefix(header, bearerPrefix) {
		return false
	}
	provided := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return subtle.ConstantTimeCompare([]byte(provided), []byte(token)) == 1
}
