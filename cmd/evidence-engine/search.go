// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/search"
	"github.com/pdiddy/evidence-engine/internal/terms"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Retrieve, filter, and rank literature for a clinical question",
	Long: `Search generates PICO terms from the query, fans them out to every
enabled literature source, deduplicates the union, applies the filter
policy, and prints the clinically re-ranked result set.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("year-from", 0, "minimum publication year")
	searchCmd.Flags().Int("year-to", 0, "maximum publication year")
	searchCmd.Flags().Bool("peer-reviewed", false, "exclude preprints")
	searchCmd.Flags().Bool("open-access", false, "keep only open-access documents")
	searchCmd.Flags().Int("max-results", 0, "cap the ranked result set")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	generated := gen.Generate(cmd.Context(), args[0], types.NLPHints{})
	if len(generated) == 0 {
		return fmt.Errorf("no terms generated for %q", args[0])
	}

	var sources []search.Source
	if cfg.Search.PubMed.Enabled {
		sources = append(sources, search.NewPubMedSource(cfg.Search.PubMed, logger))
	}
	if cfg.Search.EuropePMC.Enabled {
		sources = append(sources, search.NewEuropePMCSource(cfg.Search.EuropePMC, logger))
	}

	var filters types.ReviewFilters
	filters.YearFrom, _ = cmd.Flags().GetInt("year-from")
	filters.YearTo, _ = cmd.Flags().GetInt("year-to")
	filters.PeerReviewedOnly, _ = cmd.Flags().GetBool("peer-reviewed")
	filters.OpenAccessOnly, _ = cmd.Flags().GetBool("open-access")
	filters.MaxResults, _ = cmd.Flags().GetInt("max-results")

	out, err := search.Retrieve(cmd.Context(), sources, generated, filters, os.Stderr)
	if err != nil {
		return err
	}

	docs, _ := search.Filter(out.Documents, filters)
	docs = search.Rank(docs, time.Now())
	if filters.MaxResults > 0 && len(docs) > filters.MaxResults {
		docs = docs[:filters.MaxResults]
	}

	fmt.Printf("Retrieved %d documents (%d duplicates removed, %d records skipped), %d after filtering\n\n",
		out.DupsRemoved+len(out.Documents), out.DupsRemoved, out.Skipped, len(docs))
	for i, doc := range docs {
		fmt.Printf("%2d. [%s/%s %.2f] %s (%d)\n", i+1, doc.StudyType, doc.EvidenceLevel, doc.RankScore, doc.Title, doc.Year)
		if doc.DOI != "" {
			fmt.Printf("    doi:%s  source:%s\n", doc.DOI, doc.Source)
		} else if doc.PMID != "" {
			fmt.Printf("    pmid:%s  source:%s\n", doc.PMID, doc.Source)
		}
	}
	for _, warn := range out.SourceErrors {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warn)
	}
	return nil
}
