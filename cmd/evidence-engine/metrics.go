// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/trace"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics <query>",
	Short: "Run a review and print the stage metrics snapshot as JSON",
	Long: `Metrics runs the full pipeline for the query, discards the review output,
and prints per-stage latency percentiles, error counts, and pipeline
gauges as JSON. Useful for profiling source and stage behavior.`,
	Args: cobra.ExactArgs(1),
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	metrics := trace.NewMetrics()

	engine, cleanup, err := buildEngine(loadPipelineConfig(), logger, metrics)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), reviewDeadline)
	defer cancel()

	var req types.ReviewRequest
	req.Query = args[0]
	if _, err := engine.Review(ctx, req); err != nil {
		return err
	}

	data, err := metrics.ExportJSON()
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
