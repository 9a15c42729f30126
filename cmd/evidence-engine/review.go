// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-engine/internal/trace"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run the full evidence review pipeline for a clinical question",
	Long: `Review runs the complete pipeline: term generation, parallel retrieval,
deduplication, filtering, clinical re-ranking, chunking, summarization,
claim verification, and APA citation formatting.

The request comes from --query plus filter flags, or from a YAML request
file via --request. Results print as YAML (default) or JSON.`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().String("request", "", "YAML request file (overrides query/filter flags)")
	reviewCmd.Flags().String("query", "", "free-text clinical question")
	reviewCmd.Flags().Int("year-from", 0, "minimum publication year")
	reviewCmd.Flags().Int("year-to", 0, "maximum publication year")
	reviewCmd.Flags().Bool("peer-reviewed", false, "exclude preprints")
	reviewCmd.Flags().Bool("open-access", false, "keep only open-access documents")
	reviewCmd.Flags().Bool("full-text", false, "keep only documents with retrievable full text")
	reviewCmd.Flags().StringSlice("designs", nil, "allow-list of study designs (e.g. rct,meta_analysis)")
	reviewCmd.Flags().Int("max-results", 0, "cap on documents entering the chunker")
	reviewCmd.Flags().Bool("json", false, "output the result as JSON")
	reviewCmd.Flags().String("bib-out", "", "write the bibliography to a YAML file")
	reviewCmd.Flags().String("metrics-out", "", "write the stage metrics snapshot to a JSON file")

	rootCmd.AddCommand(reviewCmd)
}

// loadRequest builds the review request from the request file or flags.
func loadRequest(cmd *cobra.Command) (types.ReviewRequest, error) {
	if path, _ := cmd.Flags().GetString("request"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return types.ReviewRequest{}, fmt.Errorf("reading request file: %w", err)
		}
		var req types.ReviewRequest
		if err := yaml.Unmarshal(data, &req); err != nil {
			return types.ReviewRequest{}, fmt.Errorf("parsing request file: %w", err)
		}
		return req, nil
	}

	query, _ := cmd.Flags().GetString("query")
	if query == "" {
		return types.ReviewRequest{}, fmt.Errorf("provide --query or --request")
	}

	var req types.ReviewRequest
	req.Query = query
	req.Filters.YearFrom, _ = cmd.Flags().GetInt("year-from")
	req.Filters.YearTo, _ = cmd.Flags().GetInt("year-to")
	req.Filters.PeerReviewedOnly, _ = cmd.Flags().GetBool("peer-reviewed")
	req.Filters.OpenAccessOnly, _ = cmd.Flags().GetBool("open-access")
	req.Filters.FullTextRequired, _ = cmd.Flags().GetBool("full-text")
	req.Filters.MaxResults, _ = cmd.Flags().GetInt("max-results")

	designs, _ := cmd.Flags().GetStringSlice("designs")
	for _, d := range designs {
		req.Filters.StudyDesigns = append(req.Filters.StudyDesigns, types.StudyType(strings.TrimSpace(d)))
	}
	return req, nil
}

func runReview(cmd *cobra.Command, args []string) error {
	req, err := loadRequest(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	metrics := trace.NewMetrics()

	engine, cleanup, err := buildEngine(loadPipelineConfig(), logger, metrics)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), reviewDeadline)
	defer cancel()

	result, err := engine.Review(ctx, req)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(out))
	} else {
		out, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Fprint(os.Stdout, string(out))
	}

	if bibOut, _ := cmd.Flags().GetString("bib-out"); bibOut != "" {
		if err := writeBibliography(bibOut, result.References); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d references to %s\n", len(result.References), bibOut)
	}

	if metricsOut, _ := cmd.Flags().GetString("metrics-out"); metricsOut != "" {
		data, err := metrics.ExportJSON()
		if err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}
		if err := os.WriteFile(metricsOut, data, 0o644); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	return nil
}

// writeBibliography exports final citations as a YAML file.
func writeBibliography(path string, refs []types.FinalCitation) error {
	data, err := yaml.Marshal(struct {
		References []types.FinalCitation `yaml:"references"`
	}{References: refs})
	if err != nil {
		return fmt.Errorf("encoding bibliography: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing bibliography: %w", err)
	}
	return nil
}
