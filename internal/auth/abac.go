package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/task-management/internal"
)

// ResourceKind identifies the entity type an ownership check runs against.
type ResourceKind string

const (
	ResourceUser     ResourceKind = "user"
	ResourceWorkItem ResourceKind = "work_item"
)

// Operation is the action attempted on a loaded resource.
type Operation string

const (
	OpView         Operation = "view"
	OpUpdate       Operation = "update"
	OpUpdateStatus Operation = "update_status"
	OpDelete       Operation = "delete"
)

// Resource is implemented by every entity subject to ownership rules.
type Resource interface {
	ResourceKind() ResourceKind
	ResourceID() int64
	// OwnedBy reports whether callerID owns the resource: the user itself
	// for profiles, the assignee for work items.
	OwnedBy(callerID int64) bool
}

// ResourceAuthorizer decides access to one specific, already loaded record.
type ResourceAuthorizer interface {
	CheckAccess(ctx context.Context, id Identity, resource Resource, op Operation) error
}

// ABACPolicy is the single ownership rule shared by every entity type.
type ABACPolicy struct {
	logger *slog.Logger
}

func NewABACPolicy(logger *slog.Logger) *ABACPolicy {
	return &ABACPolicy{logger: logger}
}

// CheckAccess runs after the coarse permission gate. Admins pass for every
// resource; users pass only for resources they own. Denials return the same
// error as the permission gate so callers cannot tell the two apart.
func (p *ABACPolicy) CheckAccess(ctx context.Context, id Identity, resource Resource, op Operation) error {
	switch id.Role {
	case RoleAdmin:
		return nil
	case RoleUser:
		if resource != nil && resource.OwnedBy(id.CallerID) {
			return nil
		}
	}

	attrs := []any{
		"caller_id", id.CallerID,
		"role", id.Role.String(),
		"operation", string(op),
	}
	if resource != nil {
		attrs = append(attrs, "resource", string(resource.ResourceKind()), "resource_id", resource.ResourceID())
	}
	p.logger.WarnContext(ctx, "access denied: resource not owned by caller", attrs...)
	return internal.ErrForbidden
}
