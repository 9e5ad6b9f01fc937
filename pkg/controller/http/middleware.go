package http

import (
	"context"
	"net/http"
	"strings"
)

type ctxCallerKey struct{}

// identityMiddleware trusts the caller ID set by the fronting auth proxy.
// Requests without it are rejected.
func identityMiddleware(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			callerID := strings.TrimSpace(r.Header.Get(header))
			if callerID == "" {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), ctxCallerKey{}, callerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func callerFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxCallerKey{}).(string)
	return id
}
