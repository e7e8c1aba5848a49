package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetnorm-go/internal/config"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/output"
)

var (
	sampleSize int
	sampleSeed int64
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [long_table.(parquet|csv|db)]",
		Short: "Print row count, schema, top metrics, year range and a sample",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}

	cmd.Flags().IntVar(&sampleSize, "sample", 0, "Number of random rows to print")
	cmd.Flags().Int64Var(&sampleSeed, "seed", 0, "Random seed of the sample")
	return cmd
}

func applyVerifyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Lookup("sample") == nil {
		return
	}
	if flags.Changed("sample") {
		c.Verify.Sample = sampleSize
	}
	if flags.Changed("seed") {
		c.Verify.Seed = sampleSeed
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	table, err := output.ReadLong(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read long table: %w", err)
	}
	return output.Summarize(table, cfg.Verify.Sample, cfg.Verify.Seed).Write(cmd.OutOrStdout())
}
