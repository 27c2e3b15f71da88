package api_test

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/api/shared"
)

// withUser returns middleware that injects the given user ID into the
// request context, standing in for the real auth middleware.
func withUser(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
