package cmd

import (
	"github.com/frahmantamala/task-management/internal/database"
	"github.com/frahmantamala/task-management/internal/seed"
	"github.com/frahmantamala/task-management/pkg/logger"
	"github.com/spf13/cobra"
	gormLogger "gorm.io/gorm/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with an admin, a normal user and a few work items for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(".")
		if err != nil {
			return err
		}

		db, err := database.Open(cfg.Database, gormLogger.Warn)
		if err != nil {
			return err
		}
		defer db.Close()

		report, err := seed.Run(cmd.Context(), db.Gorm, clearData, logger.L())
		if err != nil {
			return err
		}
		cmd.Printf("seeded %d users and %d work items\n", report.Users, report.WorkItems)
		return nil
	},
}
