// Package api implements the REST and websocket HTTP surface using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/tandemchat/backend/internal/auth"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware validates the "Authorization: Bearer <token>" header and
// stores the authenticated username in the request context.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			username, err := auth.UsernameFromToken(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("invalid token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), username)))
		})
	}
}

func withUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userContextKey, username)
}

// UserFromContext returns the authenticated username set by AuthMiddleware.
func UserFromContext(ctx context.Context) string {
	username, _ := ctx.Value(userContextKey).(string)
	return username
}
