package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/database"
	"github.com/frahmantamala/task-management/pkg/logger"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	gormLogger "gorm.io/gorm/logger"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}
	log := logger.L()

	db, err := database.Open(cfg.Database, gormLogger.Warn)
	if err != nil {
		return err
	}
	defer db.Close()

	// sqlite has no goose dialect setup here; its schema comes from the models
	if cfg.Database.Driver == internal.DriverSQLite {
		if migrateRollback {
			return fmt.Errorf("rollback is only supported for postgres")
		}
		if err := database.AutoMigrate(db.Gorm); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("sqlite schema migrated")
		return nil
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose: %w", err)
	}
	goose.SetTableName("schema_migrations")

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db.SQL.DB, migrateDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	log.Info("migrations applied", "command", command, "dir", migrateDir)
	return nil
}
