package workitem_test

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
	"github.com/frahmantamala/task-management/internal/workitem"
	workitemPostgres "github.com/frahmantamala/task-management/internal/workitem/postgres"
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

var _ = Describe("Work Item Handler Integration", func() {
	var (
		db      *database.Handles
		router  *chi.Mux
		service *workitem.Service
		adminID int64
		userID  int64
		mineID  int64
		foreign int64
	)

	BeforeEach(func() {
		var err error
		db, err = database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		Expect(database.AutoMigrate(db.Gorm)).To(Succeed())

		policy := auth.NewABACPolicy(testLogger())
		users := user.NewService(userPostgres.NewUserRepository(db.Gorm), policy, nil, testLogger())
		service = workitem.NewService(workitemPostgres.NewWorkItemRepository(db.Gorm), users, policy, nil, testLogger())
		handler := workitem.NewHandler(transport.NewBaseHandler(testLogger()), service)

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
		router.Post("/workitems/search", handler.SearchWorkItems)
		router.Get("/workitems/{id}", handler.GetWorkItem)
		router.Post("/workitems", handler.CreateWorkItem)
		router.Put("/workitems", handler.UpdateWorkItem)
		router.Patch("/workitems/{id}/status", handler.UpdateWorkItemStatus)
		router.Delete("/workitems/{id}", handler.DeleteWorkItem)

		ctx := context.Background()
		bootstrap := auth.Identity{CallerID: 1, Role: auth.RoleAdmin}
		admin, err := users.Create(ctx, bootstrap, user.CreateUserRequest{Name: "Admin User", Email: "admin@test.com", Role: auth.RoleAdmin})
		Expect(err).NotTo(HaveOccurred())
		normal, err := users.Create(ctx, bootstrap, user.CreateUserRequest{Name: "Normal User", Email: "user@test.com", Role: auth.RoleUser})
		Expect(err).NotTo(HaveOccurred())
		adminID, userID = admin.ID, normal.ID

		mine, err := service.Create(ctx, bootstrap, workitem.CreateWorkItemRequest{Title: "Mine", AssignedUserID: &userID})
		Expect(err).NotTo(HaveOccurred())
		other, err := service.Create(ctx, bootstrap, workitem.CreateWorkItemRequest{Title: "Unassigned"})
		Expect(err).NotTo(HaveOccurred())
		mineID, foreign = mine.ID, other.ID
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

	path := func(id int64) string {
		return "/workitems/" + strconv.FormatInt(id, 10)
	}

	It("should create an item and serialise the status by name", func() {
		w := do(http.MethodPost, "/workitems", map[string]interface{}{"title": "Ship it", "assignedUserId": userID}, adminID, "Admin")
		Expect(w.Code).To(Equal(http.StatusCreated))

		var raw map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&raw)).To(Succeed())
		Expect(raw["status"]).To(Equal("New"))
		Expect(raw["referenceCode"]).To(HavePrefix("WI-"))
		Expect(raw["assignedUser"]).To(HaveKeyWithValue("email", "user@test.com"))
	})

	It("should return 400 with the assignee code for an unknown assignee", func() {
		w := do(http.MethodPost, "/workitems", map[string]interface{}{"title": "Ghost", "assignedUserId": 999}, adminID, "Admin")
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var env errorEnvelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		Expect(env.Error.Code).To(Equal(string(internal.ErrCodeAssignedUserNotFound)))
	})

	It("should let the assignee read the item", func() {
		w := do(http.MethodGet, path(mineID), nil, userID, "User")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp workitem.WorkItemResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Title).To(Equal("Mine"))
		Expect(resp.AssignedUser).NotTo(BeNil())
	})

	It("should return 403 with the uniform message for unassigned items", func() {
		w := do(http.MethodGet, path(foreign), nil, userID, "User")
		Expect(w.Code).To(Equal(http.StatusForbidden))

		var env errorEnvelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		Expect(env.Error.Message).To(Equal(internal.AccessDeniedMessage))
	})

	It("should change the status through the query string", func() {
		w := do(http.MethodPatch, path(mineID)+"/status?status=inprogress", nil, userID, "User")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp workitem.WorkItemResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Status).To(Equal(workitem.StatusInProgress))
	})

	It("should return 400 for an unknown status", func() {
		w := do(http.MethodPatch, path(mineID)+"/status?status=Archived", nil, adminID, "Admin")
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var env errorEnvelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		Expect(env.Error.Code).To(Equal(string(internal.ErrCodeInvalidStatus)))
	})

	It("should update an item", func() {
		w := do(http.MethodPut, "/workitems", map[string]interface{}{"id": foreign, "title": "Now assigned", "status": "Pending", "assignedUserId": adminID}, adminID, "Admin")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp workitem.WorkItemResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Status).To(Equal(workitem.StatusPending))
		Expect(*resp.AssignedUserID).To(Equal(adminID))
	})

	It("should scope searches for users", func() {
		w := do(http.MethodPost, "/workitems/search", map[string]interface{}{"pageIndex": 0, "pageSize": 10}, userID, "User")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp workitem.WorkItemsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.TotalCount).To(BeEquivalentTo(1))
		Expect(resp.Items[0].ID).To(Equal(mineID))
	})

	It("should delete once and then report 404", func() {
		Expect(do(http.MethodDelete, path(mineID), nil, adminID, "Admin").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodDelete, path(mineID), nil, adminID, "Admin").Code).To(Equal(http.StatusNotFound))
	})

	It("should return 400 for non numeric ids", func() {
		Expect(do(http.MethodGet, "/workitems/abc", nil, adminID, "Admin").Code).To(Equal(http.StatusBadRequest))
	})
})
