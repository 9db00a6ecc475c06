package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Capstone-E1/aquasmart_monitor/config"
	"github.com/Capstone-E1/aquasmart_monitor/internal/database"
	"github.com/Capstone-E1/aquasmart_monitor/internal/export"
	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
	"github.com/Capstone-E1/aquasmart_monitor/internal/monitor"
	"github.com/Capstone-E1/aquasmart_monitor/internal/services"
	"github.com/Capstone-E1/aquasmart_monitor/internal/simulator"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wqctl",
		Short: "Evaluate and simulate water quality readings",
		Long: `wqctl classifies water samples as Safe, Moderate or Unsafe, scores them
with the water quality index, runs simulated monitoring sessions, lists
alerts stored in the PostgreSQL archive and manages its tables.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(migrateCmd())

	return rootCmd
}

// evaluateCmd classifies a single reading.
func evaluateCmd() *cobra.Command {
	var (
		ph        float64
		turbidity float64
		tds       int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Classify and score one reading",
		Long: `Classify and score one reading.

Examples:
  wqctl evaluate --ph 7.2 --turbidity 2 --tds 350
  wqctl evaluate --ph 4 --turbidity 9 --tds 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			printEvaluation(cmd.OutOrStdout(), models.Reading{Ph: ph, Turbidity: turbidity, TDS: tds})
			return nil
		},
	}

	cmd.Flags().Float64Var(&ph, "ph", 7.0, "pH value (0-14)")
	cmd.Flags().Float64Var(&turbidity, "turbidity", 0, "Turbidity in NTU")
	cmd.Flags().IntVar(&tds, "tds", 0, "Total dissolved solids in ppm")

	return cmd
}

func printEvaluation(w io.Writer, reading models.Reading) {
	tier := reading.Tier()
	fmt.Fprintf(w, "Reading:        %s\n", reading)
	fmt.Fprintf(w, "Status:         %s\n", tier)
	fmt.Fprintf(w, "WQI:            %d\n", reading.Index())
	fmt.Fprintf(w, "Recommendation: %s\n", tier.Recommendation())
}

// simulateCmd runs in-process monitoring cycles.
func simulateCmd() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run simulated monitoring cycles",
		Long: `Run simulated monitoring cycles and print each evaluation.

Examples:
  # Ten normal cycles
  wqctl simulate --cycles 10

  # Contamination on every third cycle, alert report as CSV at the end
  wqctl simulate --cycles 12 --spike-every 3 --csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.Cycles, "cycles", 10, "Number of cycles to run")
	cmd.Flags().IntVar(&opts.SpikeEvery, "spike-every", 0, "Inject a contamination spike every N cycles (0 disables)")
	cmd.Flags().StringVar(&opts.Location, "location", monitor.DefaultLocation, "Monitoring location tag")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	cmd.Flags().BoolVar(&opts.CSV, "csv", false, "Print the alert report as CSV after the run")

	return cmd
}

type simulateOptions struct {
	Cycles     int
	SpikeEvery int
	Location   string
	Seed       uint64
	CSV        bool
}

func runSimulation(w io.Writer, opts simulateOptions) error {
	if opts.Cycles <= 0 {
		return fmt.Errorf("--cycles must be positive, got %d", opts.Cycles)
	}
	if opts.SpikeEvery < 0 {
		return fmt.Errorf("--spike-every must not be negative, got %d", opts.SpikeEvery)
	}

	sim := simulator.New()
	if opts.Seed != 0 {
		sim = simulator.NewWithSeed(opts.Seed, opts.Seed)
	}

	session := monitor.NewSession(monitor.WithLocations(opts.Location))
	runner := services.NewScheduler(session, sim, services.DefaultRefreshInterval)
	parser := services.NewSensorParser()

	for i := 1; i <= opts.Cycles; i++ {
		if opts.SpikeEvery > 0 && i%opts.SpikeEvery == 0 {
			sim.TriggerSpike()
		}
		eval := runner.RunCycle()
		fmt.Fprintf(w, "#%-3d %s\n", i, parser.FormatSensorReading(&eval))
	}

	stats := session.Stats()
	fmt.Fprintf(w, "\nCycles: %d, Unsafe alerts: %d\n", stats.Cycles, stats.Alerts)

	if opts.CSV {
		fmt.Fprintln(w)
		if err := export.NewExportService().WriteCSV(w, session.Alerts()); err != nil {
			return err
		}
	}
	return nil
}

// alertsCmd lists archived alerts.
func alertsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List alerts from the PostgreSQL archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := database.Connect(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			alertStore := database.NewAlertStore(db.DB)
			alerts, err := alertStore.RecentAlerts(ctx, limit)
			if err != nil {
				return err
			}
			total, err := alertStore.CountAlerts(ctx)
			if err != nil {
				return err
			}

			printAlerts(cmd.OutOrStdout(), alerts, total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of alerts to show")

	return cmd
}

func printAlerts(w io.Writer, alerts []models.AlertRecord, total int) {
	fmt.Fprintf(w, "\n🚨 Latest %d of %d Archived Alerts:\n", len(alerts), total)
	fmt.Fprintln(w, "=====================================")
	fmt.Fprintf(w, "%-20s %-24s %-6s %-9s %-6s\n", "Time", "Location", "pH", "Turbidity", "TDS")
	fmt.Fprintln(w, "---------------------------------------------------------------------")

	for _, alert := range alerts {
		fmt.Fprintf(w, "%-20s %-24s %-6.2f %-9.2f %-6d\n",
			alert.Time.Format("2006-01-02 15:04:05"), alert.Location, alert.Ph, alert.Turbidity, alert.TDS)
	}

	if len(alerts) == 0 {
		fmt.Fprintln(w, "No alerts archived yet")
	}
}
