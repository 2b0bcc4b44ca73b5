package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HeaderResolver", func() {
	var resolver *auth.HeaderResolver

	BeforeEach(func() {
		resolver = auth.NewHeaderResolver()
	})

	request := func(id, role string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if id != "" {
			req.Header.Set(auth.HeaderUserID, id)
		}
		if role != "" {
			req.Header.Set(auth.HeaderUserRole, role)
		}
		return req
	}

	It("should resolve a valid identity", func() {
		id, err := resolver.Resolve(request("5", "user"))
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(auth.Identity{CallerID: 5, Role: auth.RoleUser}))
	})

	DescribeTable("rejecting bad metadata",
		func(id, role string, expected error) {
			_, err := resolver.Resolve(request(id, role))
			Expect(errors.Is(err, expected)).To(BeTrue())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusUnauthorized))
		},
		Entry("missing id", "", "Admin", internal.ErrMissingIdentity),
		Entry("missing role", "1", "", internal.ErrMissingIdentity),
		Entry("non numeric id", "abc", "Admin", internal.ErrInvalidIdentity),
		Entry("zero id", "0", "Admin", internal.ErrInvalidIdentity),
		Entry("negative id", "-3", "User", internal.ErrInvalidIdentity),
		Entry("unknown role", "1", "Owner", internal.ErrInvalidIdentity),
	)
})

var _ = Describe("JWTResolver", func() {
	const (
		secret = "0123456789abcdef0123456789abcdef"
		issuer = "task-management"
	)

	var resolver *auth.JWTResolver

	BeforeEach(func() {
		resolver = auth.NewJWTResolver(secret, issuer)
	})

	withBearer := func(token string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	It("should resolve identities from issued tokens", func() {
		token, err := auth.IssueToken(secret, issuer, auth.Identity{CallerID: 3, Role: auth.RoleAdmin}, time.Minute)
		Expect(err).NotTo(HaveOccurred())

		id, err := resolver.Resolve(withBearer(token))
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(auth.Identity{CallerID: 3, Role: auth.RoleAdmin}))
	})

	It("should report a missing header as missing identity", func() {
		_, err := resolver.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(errors.Is(err, internal.ErrMissingIdentity)).To(BeTrue())
	})

	It("should reject tokens signed with another secret", func() {
		token, err := auth.IssueToken("ffffffffffffffffffffffffffffffff", issuer, auth.Identity{CallerID: 3, Role: auth.RoleAdmin}, time.Minute)
		Expect(err).NotTo(HaveOccurred())

		_, err = resolver.Resolve(withBearer(token))
		Expect(errors.Is(err, internal.ErrInvalidIdentity)).To(BeTrue())
	})

	It("should reject tokens from another issuer", func() {
		token, err := auth.IssueToken(secret, "someone-else", auth.Identity{CallerID: 3, Role: auth.RoleUser}, time.Minute)
		Expect(err).NotTo(HaveOccurred())

		_, err = resolver.Resolve(withBearer(token))
		Expect(errors.Is(err, internal.ErrInvalidIdentity)).To(BeTrue())
	})

	It("should reject other authorization schemes", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, err := resolver.Resolve(req)
		Expect(errors.Is(err, internal.ErrInvalidIdentity)).To(BeTrue())
	})

	It("should reject garbage tokens", func() {
		_, err := resolver.Resolve(withBearer("not-a-token"))
		Expect(errors.Is(err, internal.ErrInvalidIdentity)).To(BeTrue())
	})
})
