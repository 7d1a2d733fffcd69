package middleware

import (
	"net/http"
	"strings"

	"horizonx-machine/internal/domain"
)

// JWT accepts the token from the Authorization header or the access_token cookie.
func JWT(auth domain.AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ""
			if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
				tokenStr = strings.TrimPrefix(header, "Bearer ")
			} else if cookie, err := r.Cookie("access_token"); err == nil {
				tokenStr = cookie.Value
			}

			if tokenStr == "" {
				http.Error(w, "missing or invalid token", http.StatusUnauthorized)
				return
			}

			if err := auth.Validate(tokenStr); err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
