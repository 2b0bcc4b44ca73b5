package middleware

import (
	"net/http"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/transport"
	"github.com/frahmantamala/task-management/pkg/logger"
)

// Identity resolves the caller once per request and rejects the request
// with 401 when the metadata is missing or malformed.
func Identity(resolver auth.IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.Resolve(r)
			if err != nil {
				appErr, ok := internal.IsAppError(err)
				if !ok {
					appErr = internal.ErrInvalidIdentity.WithCause(err)
				}
				logger.From(r.Context()).Warn("identity rejected",
					"path", r.URL.Path,
					"code", appErr.Code,
					"error", err)
				transport.WriteAppError(w, appErr)
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), id)
			ctx = logger.With(ctx, "callerID", id.CallerID, "role", id.Role.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
