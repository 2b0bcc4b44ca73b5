package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/core/datamodel"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	"github.com/frahmantamala/task-management/internal/core/events"
	"github.com/frahmantamala/task-management/internal/database"
	"github.com/frahmantamala/task-management/internal/store"
	"github.com/frahmantamala/task-management/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("UnitOfWork", func() {
	var (
		db         *database.Handles
		users      *store.Store[userDatamodel.User]
		bus        *events.EventBus
		dispatched atomic.Int32
	)

	BeforeEach(func() {
		var err error
		db, err = database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		Expect(database.AutoMigrate(db.Gorm)).To(Succeed())
		users = store.New[userDatamodel.User](db.Gorm)

		dispatched.Store(0)
		bus = events.NewEventBus(testLogger())
		bus.Subscribe(events.EventTypeUserCreated, func(context.Context, events.Event) error {
			dispatched.Add(1)
			return nil
		})
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	// writer stores a user, raises an event and answers with status.
	writer := func(status int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			row := &userDatamodel.User{Name: "Ann", Email: "ann@test.com", Role: 2, Audit: datamodel.Audit{}}
			Expect(users.Add(r.Context(), row)).To(Succeed())
			Expect(bus.Publish(r.Context(), events.NewEntityEvent(events.EventTypeUserCreated, 1, row.ID, nil))).To(Succeed())
			w.Header().Set("X-Handler", "ran")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}

	count := func() int64 {
		page, err := users.Page(context.Background(), nil, 0, 10)
		Expect(err).NotTo(HaveOccurred())
		return page.TotalCount
	}

	serve := func(h http.Handler, ctx context.Context) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil).WithContext(ctx)
		middleware.UnitOfWork(db.Gorm, bus, testLogger())(h).ServeHTTP(w, req)
		bus.Wait()
		return w
	}

	It("should commit successful requests and then dispatch their events", func() {
		w := serve(writer(http.StatusCreated), context.Background())
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Header().Get("X-Handler")).To(Equal("ran"))
		Expect(w.Body.String()).To(Equal(`{"ok":true}`))
		Expect(count()).To(BeEquivalentTo(1))
		Expect(dispatched.Load()).To(BeEquivalentTo(1))
	})

	It("should roll back failed requests and drop their events", func() {
		w := serve(writer(http.StatusConflict), context.Background())
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(count()).To(BeZero())
		Expect(dispatched.Load()).To(BeZero())
	})

	It("should roll back and report 503 when the request was cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writer(http.StatusOK)(w, r)
			cancel()
		})

		w := serve(h, ctx)
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		env := decodeError(w)
		Expect(env.Error.Type).To(Equal(string(internal.ErrorTypeStorageUnavailable)))
		Expect(env.Error.Retryable).To(BeTrue())
		Expect(count()).To(BeZero())
		Expect(dispatched.Load()).To(BeZero())
	})

	It("should discard the response and report 503 when the commit fails", func() {
		// The deferred reference is only checked at COMMIT, so the handler
		// itself succeeds and the failure surfaces on commit.
		Expect(db.Gorm.Exec("PRAGMA foreign_keys = ON").Error).To(Succeed())
		Expect(db.Gorm.Exec(`CREATE TABLE teams (id INTEGER PRIMARY KEY)`).Error).To(Succeed())
		Expect(db.Gorm.Exec(`CREATE TABLE members (
			id INTEGER PRIMARY KEY,
			team_id INTEGER NOT NULL REFERENCES teams(id) DEFERRABLE INITIALLY DEFERRED
		)`).Error).To(Succeed())

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(store.Conn(r.Context(), db.Gorm).Exec("INSERT INTO members (team_id) VALUES (42)").Error).To(Succeed())
			writer(http.StatusCreated)(w, r)
		})

		w := serve(h, context.Background())
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(w.Header().Get("X-Handler")).To(BeEmpty())
		Expect(w.Body.String()).NotTo(ContainSubstring(`"ok":true`))

		env := decodeError(w)
		Expect(env.Error.Type).To(Equal(string(internal.ErrorTypeStorageUnavailable)))
		Expect(env.Error.Retryable).To(BeTrue())

		var members int64
		Expect(db.Gorm.Table("members").Count(&members).Error).To(Succeed())
		Expect(members).To(BeZero())
		Expect(count()).To(BeZero())
		Expect(dispatched.Load()).To(BeZero())
	})
})
