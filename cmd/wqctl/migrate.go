package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Capstone-E1/aquasmart_monitor/config"
	"github.com/Capstone-E1/aquasmart_monitor/internal/database"
	"github.com/spf13/cobra"
)

// migrateOptions selects which archive schema steps run
type migrateOptions struct {
	Drop   bool
	Create bool
	Check  bool
}

// archiveSchema is the part of the alert archive a migration touches
type archiveSchema struct {
	Drop        func() error
	Create      func() error
	Check       func() error
	CountAlerts func(ctx context.Context) (int, error)
}

// migrateCmd manages the water_alerts archive schema.
func migrateCmd() *cobra.Command {
	var opts migrateOptions

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create, drop or check the alert archive tables",
		Long: `Create, drop or check the water_alerts archive tables.

After --check the number of archived alerts is reported.

Examples:
  # Create tables (default)
  wqctl migrate

  # Start over with an empty archive
  wqctl migrate --drop

  # Verify the schema and count archived alerts
  wqctl migrate --create=false --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" && cfg.Database.Password == "" {
				return errors.New("database credentials not configured: set DATABASE_URL or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME")
			}

			db, err := database.Connect(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			alertStore := database.NewAlertStore(db.DB)
			return runMigration(ctx, cmd.OutOrStdout(), archiveSchema{
				Drop:        func() error { return database.DropTables(db.DB) },
				Create:      func() error { return database.CreateTables(db.DB) },
				Check:       func() error { return database.CheckTablesExist(db.DB) },
				CountAlerts: alertStore.CountAlerts,
			}, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Drop, "drop", false, "Drop the archive tables before creating")
	cmd.Flags().BoolVar(&opts.Create, "create", true, "Create the archive tables")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Check the tables exist and count archived alerts")

	return cmd
}

func runMigration(ctx context.Context, w io.Writer, schema archiveSchema, opts migrateOptions) error {
	fmt.Fprintln(w, "🏗️  AquaSmart Alert Archive Migration")

	if opts.Drop {
		fmt.Fprintln(w, "🗑️  Dropping water_alerts...")
		if err := schema.Drop(); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
	}

	if opts.Create {
		fmt.Fprintln(w, "🏗️  Creating water_alerts...")
		if err := schema.Create(); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}

	if opts.Check {
		fmt.Fprintln(w, "🔍 Checking water_alerts...")
		if err := schema.Check(); err != nil {
			return fmt.Errorf("table check failed: %w", err)
		}
		count, err := schema.CountAlerts(ctx)
		if err != nil {
			return fmt.Errorf("failed to count archived alerts: %w", err)
		}
		fmt.Fprintf(w, "📊 water_alerts holds %d archived alerts\n", count)
	}

	fmt.Fprintln(w, "🎉 Migration completed")
	return nil
}
