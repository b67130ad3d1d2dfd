package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tair/empowhr-payroll/internal/payroll"
	"github.com/tair/empowhr-payroll/internal/payroll/usecase/command"
	"github.com/tair/empowhr-payroll/pkg/database"
)

func reconcileCmd() *cobra.Command {
	var (
		email string
		month int
		year  int
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Complete pending payroll requests whose period is already paid",
		Long: `Scan pending payroll requests and complete those that already have a
payment in the ledger, using that payment's transaction id.

Examples:
  payroll reconcile
  payroll reconcile --email alice@co.com --month 3 --year 2024`,
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

			reconciler, err := payroll.InitializeReconciler(db)
			if err != nil {
				return err
			}

			result, err := reconciler.Handle(cmd.Context(), command.ReconcileRequestsCommand{
				EmployeeEmail: email,
				Month:         month,
				Year:          year,
			})
			if err != nil {
				return fmt.Errorf("reconciliation failed: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "only this employee")
	cmd.Flags().IntVar(&month, "month", 0, "only this month (1-12)")
	cmd.Flags().IntVar(&year, "year", 0, "only this year")
	return cmd
}
