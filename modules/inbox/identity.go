package inbox

import (
	"context"
	"net/http"
)

type ctxKey struct{}

// WithIdentity returns a context carrying the authenticated user ID. The
// platform's auth middleware calls this after validating the session.
func WithIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// IdentityFromContext extracts the authenticated user ID, if any.
func IdentityFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// IdentityMiddleware builds middleware that resolves the authenticated user
// from a request and stores it in the context. Requests the resolver cannot
// authenticate are rejected with 401 before reaching a handler.
func IdentityMiddleware(resolve func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolve(r)
			if err != nil || userID == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), userID)))
		})
	}
}
