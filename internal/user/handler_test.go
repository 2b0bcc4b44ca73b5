package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/database"
	"github.com/frahmantamala/task-management/internal/transport"
	"github.com/frahmantamala/task-management/internal/user"
	userPostgres "github.com/frahmantamala/task-management/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var _ = Describe("User Handler Integration", func() {
	var (
		db      *database.Handles
		router  *chi.Mux
		service *user.Service
		adminID int64
		userID  int64
	)

	BeforeEach(func() {
		var err error
		db, err = database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		Expect(database.AutoMigrate(db.Gorm)).To(Succeed())

		repo := userPostgres.NewUserRepository(db.Gorm)
		service = user.NewService(repo, auth.NewABACPolicy(testLogger()), nil, testLogger())
		handler := user.NewHandler(transport.NewBaseHandler(testLogger()), service)

		resolver := auth.NewHeaderResolver()
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, err := resolver.Resolve(r)
				if err != nil {
					transport.WriteAppError(w, internal.ErrMissingIdentity)
					return
				}
				next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), id)))
			})
		})
		router.Post("/users/search", handler.SearchUsers)
		router.Get("/users/{id}", handler.GetUser)
		router.Post("/users", handler.CreateUser)
		router.Put("/users", handler.UpdateUser)
		router.Delete("/users/{id}", handler.DeleteUser)

		bootstrap := auth.Identity{CallerID: 1, Role: auth.RoleAdmin}
		admin, err := service.Create(context.Background(), bootstrap, user.CreateUserRequest{Name: "Admin User", Email: "admin@test.com", Role: auth.RoleAdmin})
		Expect(err).NotTo(HaveOccurred())
		normal, err := service.Create(context.Background(), bootstrap, user.CreateUserRequest{Name: "Normal User", Email: "user@test.com", Role: auth.RoleUser})
		Expect(err).NotTo(HaveOccurred())
		adminID, userID = admin.ID, normal.ID
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	do := func(method, path string, body interface{}, callerID int64, role string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if callerID > 0 {
			req.Header.Set(auth.HeaderUserID, strconv.FormatInt(callerID, 10))
			req.Header.Set(auth.HeaderUserRole, role)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should create a user and serialise the role by name", func() {
		w := do(http.MethodPost, "/users", map[string]interface{}{"name": "Grace", "email": "grace@test.com", "role": "User"}, adminID, "Admin")
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var raw map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&raw)).To(Succeed())
		Expect(raw["role"]).To(Equal("User"))
		Expect(raw["email"]).To(Equal("grace@test.com"))
	})

	It("should accept numeric roles on input", func() {
		w := do(http.MethodPost, "/users", map[string]interface{}{"name": "Linus", "email": "linus@test.com", "role": 1}, adminID, "Admin")
		Expect(w.Code).To(Equal(http.StatusCreated))
	})

	It("should return 409 for a duplicate email in another case", func() {
		w := do(http.MethodPost, "/users", map[string]interface{}{"name": "Copy", "email": "ADMIN@test.com", "role": "User"}, adminID, "Admin")
		Expect(w.Code).To(Equal(http.StatusConflict))

		var env errorEnvelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		Expect(env.Error.Code).To(Equal(string(internal.ErrCodeEmailExists)))
	})

	It("should return 400 for malformed bodies", func() {
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{"))
		req.Header.Set(auth.HeaderUserID, strconv.FormatInt(adminID, 10))
		req.Header.Set(auth.HeaderUserRole, "Admin")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 400 for non numeric ids", func() {
		w := do(http.MethodGet, "/users/abc", nil, adminID, "Admin")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 403 with the uniform message for foreign profiles", func() {
		w := do(http.MethodGet, "/users/"+strconv.FormatInt(adminID, 10), nil, userID, "User")
		Expect(w.Code).To(Equal(http.StatusForbidden))

		var env errorEnvelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		Expect(env.Error.Message).To(Equal(internal.AccessDeniedMessage))
	})

	It("should return the caller's own profile", func() {
		w := do(http.MethodGet, "/users/"+strconv.FormatInt(userID, 10), nil, userID, "user")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp user.UserResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.ID).To(Equal(userID))
		Expect(resp.Role).To(Equal(auth.RoleUser))
	})

	It("should update a user", func() {
		w := do(http.MethodPut, "/users", map[string]interface{}{"id": userID, "name": "Renamed", "email": "user@test.com", "role": "User"}, adminID, "Admin")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp user.UserResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Name).To(Equal("Renamed"))
	})

	It("should delete once and then report 404", func() {
		path := "/users/" + strconv.FormatInt(userID, 10)
		Expect(do(http.MethodDelete, path, nil, adminID, "Admin").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodDelete, path, nil, adminID, "Admin").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, path, nil, adminID, "Admin").Code).To(Equal(http.StatusNotFound))
	})

	It("should search with filters and return items with a total", func() {
		w := do(http.MethodPost, "/users/search", map[string]interface{}{
			"pageIndex": 0,
			"pageSize":  10,
			"criteria":  map[string]interface{}{"name": " normal "},
		}, adminID, "Admin")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp user.UsersResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.TotalCount).To(BeEquivalentTo(1))
		Expect(resp.Items).To(HaveLen(1))
		Expect(resp.Items[0].Email).To(Equal("user@test.com"))
	})
})
