package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/task-management/internal"
)

// PermissionAuthorizer is the coarse gate run before any business logic.
type PermissionAuthorizer interface {
	Authorize(ctx context.Context, id Identity, permission Permission) error
}

type RBACAuthorization struct {
	registry *Registry
	logger   *slog.Logger
}

func NewRBACAuthorization(registry *Registry, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		registry: registry,
		logger:   logger,
	}
}

// Authorize returns nil when the caller's role grants permission and
// internal.ErrForbidden otherwise. No entity data is consulted.
func (ra *RBACAuthorization) Authorize(ctx context.Context, id Identity, permission Permission) error {
	if !ra.registry.Known(permission) {
		ra.logger.ErrorContext(ctx, "authorization requested for unknown permission",
			"caller_id", id.CallerID,
			"role", id.Role.String(),
			"permission", string(permission))
		return internal.ErrForbidden
	}

	if !ra.registry.Allows(id.Role, permission) {
		ra.logger.WarnContext(ctx, "access denied: insufficient permissions",
			"caller_id", id.CallerID,
			"role", id.Role.String(),
			"required_permission", string(permission))
		return internal.ErrForbidden
	}

	return nil
}

func (ra *RBACAuthorization) Registry() *Registry {
	return ra.registry
}
