package auth

import (
	"slices"

	"github.com/samber/lo"
)

// Permission names a coarse capability checked against the caller's role only.
type Permission string

const (
	PermUserSearch Permission = "User.Search"
	PermUserView   Permission = "User.View"
	PermUserCreate Permission = "User.Create"
	PermUserUpdate Permission = "User.Update"
	PermUserDelete Permission = "User.Delete"

	PermWorkItemSearch       Permission = "WorkItem.Search"
	PermWorkItemView         Permission = "WorkItem.View"
	PermWorkItemCreate       Permission = "WorkItem.Create"
	PermWorkItemUpdate       Permission = "WorkItem.Update"
	PermWorkItemUpdateStatus Permission = "WorkItem.UpdateStatus"
	PermWorkItemDelete       Permission = "WorkItem.Delete"
)

// AllPermissions lists every permission the service knows about.
func AllPermissions() []Permission {
	return []Permission{
		PermUserSearch, PermUserView, PermUserCreate, PermUserUpdate, PermUserDelete,
		PermWorkItemSearch, PermWorkItemView, PermWorkItemCreate, PermWorkItemUpdate,
		PermWorkItemUpdateStatus, PermWorkItemDelete,
	}
}

// Registry maps each role to the permissions it grants. It is built once at
// startup and never mutated afterwards, so it is safe to share between
// requests without locking.
type Registry struct {
	known  map[Permission]struct{}
	grants map[Role]map[Permission]struct{}
}

// NewRegistry copies grants into a fresh registry. Grants naming a
// permission outside AllPermissions are dropped.
func NewRegistry(grants map[Role][]Permission) *Registry {
	r := &Registry{
		known:  make(map[Permission]struct{}),
		grants: make(map[Role]map[Permission]struct{}, len(grants)),
	}
	for _, p := range AllPermissions() {
		r.known[p] = struct{}{}
	}
	for role, perms := range grants {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			if _, ok := r.known[p]; ok {
				set[p] = struct{}{}
			}
		}
		r.grants[role] = set
	}
	return r
}

// DefaultRegistry returns the stock role mapping: admins hold everything,
// users may view their own profile and search, view and move the status of
// work items assigned to them.
func DefaultRegistry() *Registry {
	return NewRegistry(map[Role][]Permission{
		RoleAdmin: AllPermissions(),
		RoleUser: {
			PermUserView,
			PermWorkItemSearch,
			PermWorkItemView,
			PermWorkItemUpdateStatus,
		},
	})
}

// Allows is a pure set membership test. Unknown roles and unknown
// permissions are never allowed.
func (r *Registry) Allows(role Role, perm Permission) bool {
	set, ok := r.grants[role]
	if !ok {
		return false
	}
	_, granted := set[perm]
	return granted
}

func (r *Registry) Known(perm Permission) bool {
	_, ok := r.known[perm]
	return ok
}

// Permissions returns the sorted permissions granted to role.
func (r *Registry) Permissions(role Role) []Permission {
	perms := lo.Keys(r.grants[role])
	slices.Sort(perms)
	return perms
}
