// Package main provides the CLI entry point for sheetnorm.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetnorm-go/internal/config"
	"github.com/ukaji3/sheetnorm-go/internal/logging"
	"github.com/ukaji3/sheetnorm-go/internal/observability"
)

var (
	logLevel    string
	logFormat   string
	metricsFile string

	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetnorm",
		Short: "Normalize heterogeneous Excel workbooks into a canonical long table",
		Long: `sheetnorm reads a multi-sheet workbook whose sheets use different layouts
and produces one long table (year, region, metric, dim_name, dim_value, value),
then pivots it into one row per (year, region).`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write prometheus metrics to this textfile")

	rootCmd.AddCommand(newNormalizeCmd(), newPivotCmd(), newVerifyCmd())
	return rootCmd
}

// setup loads the environment configuration, applies flag overrides and
// builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		loaded.Logging.Format = logFormat
	}
	if flags.Changed("metrics-file") {
		loaded.MetricsFile = metricsFile
	}
	applyNormalizeFlags(cmd, loaded)
	applyPivotFlags(cmd, loaded)
	applyVerifyFlags(cmd, loaded)

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg = loaded
	logger = logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	return nil
}

// writeMetrics writes the metrics textfile when one is configured. A
// failure is logged and does not fail the run.
func writeMetrics(m *observability.Metrics) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("metrics write failed", slog.String("path", cfg.MetricsFile), slog.Any("error", err))
	}
}
