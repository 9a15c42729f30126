// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/terms"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var termsCmd = &cobra.Command{
	Use:   "terms <query>",
	Short: "Generate weighted PICO search terms for a clinical question",
	Args:  cobra.ExactArgs(1),
	RunE:  runTerms,
}

func init() {
	termsCmd.Flags().StringSlice("symptoms", nil, "symptom phrases extracted from the query")
	termsCmd.Flags().StringSlice("entities", nil, "anatomical or condition entities")
	termsCmd.Flags().StringSlice("medications", nil, "drug or therapy mentions")

	rootCmd.AddCommand(termsCmd)
}

func runTerms(cmd *cobra.Command, args []string) error {
	cfg := loadPipelineConfig()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var mesh terms.Normalizer
	if cfg.Terms.MeshLookupEnabled {
		mesh = &terms.MeshClient{
			Client: &http.Client{Timeout: cfg.Terms.Timeout},
			Config: cfg.Terms,
		}
	}
	gen := terms.NewGenerator(cfg.Terms, mesh, logger)

	var hints types.NLPHints
	hints.Symptoms, _ = cmd.Flags().GetStringSlice("symptoms")
	hints.Entities, _ = cmd.Flags().GetStringSlice("entities")
	hints.Medications, _ = cmd.Flags().GetStringSlice("medications")

	generated := gen.Generate(cmd.Context(), args[0], hints)
	if len(generated) == 0 {
		return fmt.Errorf("no terms generated for %q", args[0])
	}

	fmt.Printf("%-32s %-14s %-7s %-11s %s\n", "TERM", "CATEGORY", "WEIGHT", "CONFIDENCE", "SOURCE")
	for _, t := range generated {
		fmt.Printf("%-32s %-14s %-7.2f %-11.2f %s\n", t.Text, t.Category, t.Weight, t.Confidence, t.Source)
	}
	return nil
}
