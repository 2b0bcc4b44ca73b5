package database

import (
	"fmt"
	"time"

	"github.com/frahmantamala/task-management/internal"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	workitemDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/workitem"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Handles bundles the two views over one connection pool: sqlx for raw
// checks and goose, gorm for the repositories.
type Handles struct {
	SQL  *sqlx.DB
	Gorm *gorm.DB
}

func (h *Handles) Close() error {
	return h.SQL.Close()
}

// Open connects to the configured database. Postgres goes through the pgx
// stdlib driver; sqlite is used for local runs and tests.
func Open(cfg internal.DatabaseConfig, logLevel gormLogger.LogLevel) (*Handles, error) {
	gormCfg := &gorm.Config{
		Logger:         gormLogger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	switch cfg.Driver {
	case internal.DriverPostgres:
		sqlDB, err := sqlx.Connect("pgx", cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres connection: %w", err)
		}
		applyPool(sqlDB, cfg)

		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), gormCfg)
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to open gorm on postgres: %w", err)
		}
		return &Handles{SQL: sqlDB, Gorm: gdb}, nil

	case internal.DriverSQLite:
		gdb, err := gorm.Open(sqlite.Open(cfg.GetDSN()), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		raw, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		sqlDB := sqlx.NewDb(raw, "sqlite3")
		applyPool(sqlDB, cfg)
		if err := sqlDB.Ping(); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
		}
		return &Handles{SQL: sqlDB, Gorm: gdb}, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// OpenInMemory returns a private sqlite database. A single connection keeps
// every statement on the same in-memory instance.
func OpenInMemory() (*Handles, error) {
	return Open(internal.DatabaseConfig{
		Driver:       internal.DriverSQLite,
		Source:       ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, gormLogger.Silent)
}

func applyPool(db *sqlx.DB, cfg internal.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

// liveEmailIndex mirrors the goose migration: one live user per email,
// compared case-insensitively.
const liveEmailIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email_live ON users (lower(email)) WHERE NOT is_deleted`

// AutoMigrate creates the schema from the row models. Postgres deployments
// use the goose migrations instead.
func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&userDatamodel.User{}, &workitemDatamodel.WorkItem{}); err != nil {
		return err
	}
	if err := gdb.Exec(liveEmailIndex).Error; err != nil {
		return fmt.Errorf("failed to create live email index: %w", err)
	}
	return nil
}
