package auth_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeProfile struct{ id int64 }

func (f fakeProfile) ResourceKind() auth.ResourceKind { return auth.ResourceUser }
func (f fakeProfile) ResourceID() int64               { return f.id }
func (f fakeProfile) OwnedBy(callerID int64) bool     { return f.id == callerID }

type fakeItem struct {
	id       int64
	assignee *int64
}

func (f fakeItem) ResourceKind() auth.ResourceKind { return auth.ResourceWorkItem }
func (f fakeItem) ResourceID() int64               { return f.id }
func (f fakeItem) OwnedBy(callerID int64) bool {
	return f.assignee != nil && *f.assignee == callerID
}

func ptr(v int64) *int64 { return &v }

var _ = Describe("ABACPolicy", func() {
	var (
		policy *auth.ABACPolicy
		ctx    context.Context
		admin  auth.Identity
		user5  auth.Identity
	)

	BeforeEach(func() {
		ctx = context.Background()
		policy = auth.NewABACPolicy(testLogger())
		admin = auth.Identity{CallerID: 1, Role: auth.RoleAdmin}
		user5 = auth.Identity{CallerID: 5, Role: auth.RoleUser}
	})

	Context("on work items", func() {
		It("should always allow admins", func() {
			for _, item := range []fakeItem{{id: 1}, {id: 2, assignee: ptr(9)}, {id: 3, assignee: ptr(1)}} {
				for _, op := range []auth.Operation{auth.OpView, auth.OpUpdate, auth.OpUpdateStatus, auth.OpDelete} {
					Expect(policy.CheckAccess(ctx, admin, item, op)).To(Succeed())
				}
			}
		})

		It("should allow a user on items assigned to them", func() {
			Expect(policy.CheckAccess(ctx, user5, fakeItem{id: 1, assignee: ptr(5)}, auth.OpUpdateStatus)).To(Succeed())
		})

		It("should forbid a user on items assigned to someone else", func() {
			err := policy.CheckAccess(ctx, user5, fakeItem{id: 1, assignee: ptr(6)}, auth.OpView)
			Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
		})

		It("should forbid a user on unassigned items", func() {
			err := policy.CheckAccess(ctx, user5, fakeItem{id: 1}, auth.OpView)
			Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
		})
	})

	Context("on user profiles", func() {
		It("should allow a user to reach their own profile", func() {
			Expect(policy.CheckAccess(ctx, user5, fakeProfile{id: 5}, auth.OpView)).To(Succeed())
		})

		It("should forbid a user from other profiles", func() {
			err := policy.CheckAccess(ctx, user5, fakeProfile{id: 1}, auth.OpView)
			Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
		})
	})

	It("should forbid identities with an unknown role", func() {
		stranger := auth.Identity{CallerID: 5, Role: auth.Role(42)}
		err := policy.CheckAccess(ctx, stranger, fakeProfile{id: 5}, auth.OpView)
		Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
	})

	It("should use the same message as the permission gate", func() {
		err := policy.CheckAccess(ctx, user5, fakeItem{id: 1}, auth.OpDelete)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Message).To(Equal(internal.AccessDeniedMessage))
	})
})
