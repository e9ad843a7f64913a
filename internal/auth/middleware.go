package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/botica-erp/botica-erp/internal/platform/httpx"
)

type contextKey struct{}

var actorKey contextKey

// ActorID returns the authenticated user id from the request context, or 0.
func ActorID(ctx context.Context) int64 {
	if id, ok := ctx.Value(actorKey).(int64); ok {
		return id
	}
	return 0
}

// ContextWithActor attaches the authenticated user id to the context.
func ContextWithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey, userID)
}

// Middleware rejects requests without a valid bearer token.
func (m *TokenManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		userID, err := m.Verify(token)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), userID)))
	})
}
