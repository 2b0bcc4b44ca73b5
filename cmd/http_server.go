package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/task-management/api"
	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/core/events"
	"github.com/frahmantamala/task-management/internal/database"
	"github.com/frahmantamala/task-management/internal/transport"
	"github.com/frahmantamala/task-management/internal/transport/middleware"
	"github.com/frahmantamala/task-management/internal/transport/rest"
	"github.com/frahmantamala/task-management/internal/user"
	userPostgres "github.com/frahmantamala/task-management/internal/user/postgres"
	"github.com/frahmantamala/task-management/internal/workitem"
	workitemPostgres "github.com/frahmantamala/task-management/internal/workitem/postgres"
	"github.com/frahmantamala/task-management/pkg/logger"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/spf13/cobra"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *database.Handles
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "identity_source", deps.Config.Security.IdentitySource)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.Bus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	gormLevel := gormLogger.Warn
	if config.Observability.Logging.Level == "debug" {
		gormLevel = gormLogger.Info
	}
	db, err := database.Open(config.Database, gormLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if config.Database.Driver == internal.DriverSQLite {
		if err := database.AutoMigrate(db.Gorm); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}

	bus := events.NewEventBus(lg)
	events.SubscribeAuditLog(bus, lg)

	resolver, err := identityResolver(config.Security)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	policy := auth.NewABACPolicy(lg)
	userService := user.NewService(userPostgres.NewUserRepository(db.Gorm), policy, bus, lg)
	itemService := workitem.NewService(workitemPostgres.NewWorkItemRepository(db.Gorm), userService, policy, bus, lg)
	base := transport.NewBaseHandler(lg)

	routeDeps := rest.Dependencies{
		SQL:        db.SQL,
		Gorm:       db.Gorm,
		Bus:        bus,
		Resolver:   resolver,
		Authorizer: auth.NewRBACAuthorization(auth.DefaultRegistry(), lg),
		Users:      user.NewHandler(base, userService),
		WorkItems:  workitem.NewHandler(base, itemService),
		OpenAPI:    api.OpenAPI,
		Logger:     lg,
	}

	doc, err := middleware.LoadOpenAPI(context.Background(), api.OpenAPI)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if config.OpenAPI.ValidateRequests {
		if routeDeps.Validator, err = middleware.RequestValidator(doc); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if config.RateLimit.Enabled {
		if routeDeps.Limiter, err = middleware.NewIPLimiter(config.RateLimit.Rate); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("invalid rate_limit.rate: %w", err)
		}
	}

	router := chi.NewRouter()
	if config.Server.RequestTimeout > 0 {
		router.Use(chiMiddleware.Timeout(config.Server.RequestTimeout))
	}
	rest.RegisterAllRoutes(router, routeDeps)

	return &Dependencies{
		Config: config,
		DB:     db,
		Bus:    bus,
		Router: router,
		Logger: lg,
	}, nil
}

func identityResolver(cfg internal.SecurityConfig) (auth.IdentityResolver, error) {
	switch cfg.IdentitySource {
	case internal.IdentitySourceHeader:
		return auth.NewHeaderResolver(), nil
	case internal.IdentitySourceJWT:
		return auth.NewJWTResolver(cfg.JWTSecret, cfg.JWTIssuer), nil
	}
	return nil, fmt.Errorf("unknown identity source %q", cfg.IdentitySource)
}
