package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetnorm-go/internal/config"
	"github.com/ukaji3/sheetnorm-go/internal/observability"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/output"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/parser"
)

var (
	outputCSV     string
	parquetPath   string
	sqlitePath    string
	handlersFile  string
	reportPath    string
	defaultRegion string
	yearMin       int
	yearMax       int
	verifyOutput  bool
)

func newNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [input.xlsx]",
		Short: "Normalize every sheet of a workbook into the long table",
		Args:  cobra.ExactArgs(1),
		RunE:  runNormalize,
	}

	cmd.Flags().StringVar(&outputCSV, "output-csv", "", "Long table CSV path")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "Long table parquet path")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Also write the long table to this SQLite database")
	cmd.Flags().StringVar(&handlersFile, "handlers", "", "YAML file of sheet handlers merged over the built-in ones")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the per-sheet run report as JSON")
	cmd.Flags().StringVar(&defaultRegion, "default-region", "", "Region label for sheets without a region column")
	cmd.Flags().IntVar(&yearMin, "year-min", 0, "Smallest accepted year")
	cmd.Flags().IntVar(&yearMax, "year-max", 0, "Largest accepted year")
	cmd.Flags().BoolVar(&verifyOutput, "verify", false, "Re-read the parquet output and print a summary")
	return cmd
}

func applyNormalizeFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Lookup("output-csv") == nil {
		return
	}
	if flags.Changed("output-csv") {
		c.Normalize.OutputCSV = outputCSV
	}
	if flags.Changed("parquet") {
		c.Normalize.Parquet = parquetPath
	}
	if flags.Changed("sqlite") {
		c.Normalize.SQLite = sqlitePath
	}
	if flags.Changed("handlers") {
		c.Normalize.HandlersFile = handlersFile
	}
	if flags.Changed("report") {
		c.Normalize.Report = reportPath
	}
	if flags.Changed("default-region") {
		c.Normalize.DefaultRegion = defaultRegion
	}
	if flags.Changed("year-min") {
		c.Normalize.YearMin = yearMin
	}
	if flags.Changed("year-max") {
		c.Normalize.YearMax = yearMax
	}
}

func runNormalize(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	out := cmd.OutOrStdout()

	// Validate input file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	handlers := sheetnorm.DefaultHandlers()
	if cfg.Normalize.HandlersFile != "" {
		extra, err := sheetnorm.LoadHandlers(cfg.Normalize.HandlersFile)
		if err != nil {
			return err
		}
		handlers = handlers.Merge(extra)
	}

	metrics := observability.NewMetrics()
	defer writeMetrics(metrics)

	opts := sheetnorm.Options{
		Years:         parser.YearRange{Min: cfg.Normalize.YearMin, Max: cfg.Normalize.YearMax},
		DefaultRegion: cfg.Normalize.DefaultRegion,
		Handlers:      handlers,
		Logger:        logger,
		Observer:      metrics,
	}

	table, report, err := sheetnorm.Normalize(inputPath, opts)
	if report != nil {
		printSheetLog(out, report)
		metrics.ObserveReport(report, err == nil)
		if cfg.Normalize.Report != "" {
			if werr := output.WriteReport(cfg.Normalize.Report, report); werr != nil {
				err = errors.Join(err, fmt.Errorf("failed to write report: %w", werr))
			}
		}
	}
	if err != nil {
		return fmt.Errorf("normalization failed: %w", err)
	}

	if err := output.WriteLongCSV(cfg.Normalize.OutputCSV, table); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	fmt.Fprintf(out, "\nCSV: %s\n", cfg.Normalize.OutputCSV)

	parquetWritten := false
	if cfg.Normalize.Parquet != "" {
		if err := output.WriteLongParquet(cfg.Normalize.Parquet, table); err != nil {
			logger.Warn("parquet write failed", slog.String("path", cfg.Normalize.Parquet), slog.Any("error", err))
		} else {
			parquetWritten = true
			fmt.Fprintf(out, "Parquet: %s\n", cfg.Normalize.Parquet)
		}
	}

	if cfg.Normalize.SQLite != "" {
		if err := output.WriteLongSQLite(cmd.Context(), cfg.Normalize.SQLite, table); err != nil {
			return fmt.Errorf("failed to write sqlite: %w", err)
		}
		fmt.Fprintf(out, "SQLite: %s (table %s)\n", cfg.Normalize.SQLite, output.LongTableName)
	}

	printSummary(out, table)

	if verifyOutput {
		if !parquetWritten {
			logger.Warn("verify skipped: no parquet output")
			return nil
		}
		reread, err := output.ReadLongParquet(cfg.Normalize.Parquet)
		if err != nil {
			return fmt.Errorf("verify failed: %w", err)
		}
		if reread.Len() != table.Len() {
			return fmt.Errorf("verify failed: wrote %d rows, read back %d", table.Len(), reread.Len())
		}
		fmt.Fprintln(out)
		return output.Summarize(reread, cfg.Verify.Sample, cfg.Verify.Seed).Write(out)
	}
	return nil
}

// printSheetLog prints one line per sheet in workbook order.
func printSheetLog(w io.Writer, r *models.Report) {
	fmt.Fprintf(w, "Workbook: %s\n", r.BookName)
	for _, entry := range r.Sheets {
		fmt.Fprintf(w, "  %-34s %s\n", entry.Sheet+":", entry)
	}
}

func printSummary(w io.Writer, t *models.LongTable) {
	fmt.Fprintf(w, "\nRows: %d\n", t.Len())

	regions := t.Regions()
	fmt.Fprintf(w, "Regions (%d): %s\n", len(regions), strings.Join(regions, ", "))

	if min, max, ok := t.YearRange(); ok {
		fmt.Fprintf(w, "Years: %d - %d\n", min, max)
	}

	fmt.Fprintln(w, "Rows per metric:")
	for _, m := range t.MetricCounts() {
		fmt.Fprintf(w, "  %-40s %d\n", m.Metric, m.Rows)
	}
}
