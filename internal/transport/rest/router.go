package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/core/events"
	"github.com/frahmantamala/task-management/internal/transport/middleware"
	"github.com/frahmantamala/task-management/internal/transport/swagger"
	"github.com/frahmantamala/task-management/internal/user"
	"github.com/frahmantamala/task-management/internal/workitem"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/ulule/limiter/v3"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the HTTP surface is assembled from.
// Limiter and Validator are optional.
type Dependencies struct {
	SQL        *sqlx.DB
	Gorm       *gorm.DB
	Bus        *events.EventBus
	Resolver   auth.IdentityResolver
	Authorizer auth.PermissionAuthorizer
	Users      *user.Handler
	WorkItems  *workitem.Handler
	Limiter    *limiter.Limiter
	Validator  func(http.Handler) http.Handler
	OpenAPI    []byte
	Logger     *slog.Logger
}

type route struct {
	method     string
	pattern    string
	permission auth.Permission
	handler    http.HandlerFunc
}

// routes declares exactly one permission per operation.
func routes(users *user.Handler, items *workitem.Handler) []route {
	return []route{
		{http.MethodPost, "/users/search", auth.PermUserSearch, users.SearchUsers},
		{http.MethodGet, "/users/{id}", auth.PermUserView, users.GetUser},
		{http.MethodPost, "/users", auth.PermUserCreate, users.CreateUser},
		{http.MethodPut, "/users", auth.PermUserUpdate, users.UpdateUser},
		{http.MethodDelete, "/users/{id}", auth.PermUserDelete, users.DeleteUser},

		{http.MethodPost, "/workitems/search", auth.PermWorkItemSearch, items.SearchWorkItems},
		{http.MethodGet, "/workitems/{id}", auth.PermWorkItemView, items.GetWorkItem},
		{http.MethodPost, "/workitems", auth.PermWorkItemCreate, items.CreateWorkItem},
		{http.MethodPut, "/workitems", auth.PermWorkItemUpdate, items.UpdateWorkItem},
		{http.MethodPatch, "/workitems/{id}/status", auth.PermWorkItemUpdateStatus, items.UpdateWorkItemStatus},
		{http.MethodDelete, "/workitems/{id}", auth.PermWorkItemDelete, items.DeleteWorkItem},
	}
}

func RegisterAllRoutes(router chi.Router, deps Dependencies) {
	healthHandler := NewHealthHandler(deps.SQL)

	// Apply global middleware
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.RequestLogging(deps.Logger))
	if deps.Limiter != nil {
		router.Use(middleware.RateLimit(deps.Limiter))
	}

	if len(deps.OpenAPI) > 0 {
		router.Get(swagger.SpecPath, swagger.SpecHandler(deps.OpenAPI))
		router.Handle("/swagger/*", swagger.Handler())
	}

	// Mount API under /api/v1
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Identity(deps.Resolver))

			for _, rt := range routes(deps.Users, deps.WorkItems) {
				chain := []func(http.Handler) http.Handler{
					middleware.RequirePermission(deps.Authorizer, rt.permission),
				}
				if deps.Validator != nil {
					chain = append(chain, deps.Validator)
				}
				chain = append(chain, middleware.UnitOfWork(deps.Gorm, deps.Bus, deps.Logger))
				pr.With(chain...).Method(rt.method, rt.pattern, rt.handler)
			}
		})
	})
}
