package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tair/empowhr-payroll/internal/payroll/repository"
	"github.com/tair/empowhr-payroll/pkg/database"
	"github.com/tair/empowhr-payroll/pkg/logger"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the payroll tables and their unique indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}

			db, err := database.NewGormConnection(cfg.DatabaseConfig())
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get database instance: %w", err)
			}
			defer sqlDB.Close()

			if err := repository.AutoMigrate(db); err != nil {
				return err
			}

			logger.Logger.Info().Msg("Migrations applied")
			return nil
		},
	}
}
