package middleware

import (
	"net/http"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/transport"
)

// RequirePermission runs the coarse role check for a route. It must be
// mounted after Identity.
func RequirePermission(authorizer auth.PermissionAuthorizer, permission auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				transport.WriteAppError(w, internal.ErrMissingIdentity)
				return
			}

			if err := authorizer.Authorize(r.Context(), id, permission); err != nil {
				appErr, ok := internal.IsAppError(err)
				if !ok {
					appErr = internal.ErrForbidden
				}
				transport.WriteAppError(w, appErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
