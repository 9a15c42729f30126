// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/pdiddy/evidence-engine/internal/cache"
	"github.com/pdiddy/evidence-engine/internal/education"
	"github.com/pdiddy/evidence-engine/internal/pipeline"
	"github.com/pdiddy/evidence-engine/internal/search"
	"github.com/pdiddy/evidence-engine/internal/summarize"
	"github.com/pdiddy/evidence-engine/internal/terms"
	"github.com/pdiddy/evidence-engine/internal/trace"
	"github.com/pdiddy/evidence-engine/internal/verify"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// buildEngine wires the pipeline from configuration. The returned cleanup
// closes the cache; it is safe to call when no cache is configured.
func buildEngine(cfg types.PipelineConfig, logger *slog.Logger, metrics *trace.Metrics) (*pipeline.Engine, func(), error) {
	deps := pipeline.Deps{
		Logger:   logger,
		Metrics:  metrics,
		Sink:     trace.NewSlogSink(logger),
		Progress: os.Stderr,
	}

	var mesh terms.Normalizer
	if cfg.Terms.MeshLookupEnabled {
		mesh = &terms.MeshClient{
			Client: &http.Client{Timeout: cfg.Terms.Timeout},
			Config: cfg.Terms,
		}
	}
	deps.Terms = terms.NewGenerator(cfg.Terms, mesh, logger)

	if cfg.Search.PubMed.Enabled {
		deps.Sources = append(deps.Sources, search.NewPubMedSource(cfg.Search.PubMed, logger))
	}
	if cfg.Search.EuropePMC.Enabled {
		deps.Sources = append(deps.Sources, search.NewEuropePMCSource(cfg.Search.EuropePMC, logger))
	}
	if len(deps.Sources) == 0 {
		return nil, nil, fmt.Errorf("no literature sources enabled")
	}

	var gen summarize.Generator
	if cfg.Summary.Model != "" {
		g, err := summarize.NewLLMGenerator(cfg.Summary)
		if err != nil {
			return nil, nil, fmt.Errorf("wiring generative service: %w", err)
		}
		gen = g
	}
	deps.Summarizer = summarize.NewSummarizer(gen, cfg.Summary, logger)
	deps.Verifier = verify.NewVerifier(cfg.Verify, nil, logger)

	if cfg.Education.Enabled {
		deps.Education = education.NewClient(cfg.Education, logger)
	}

	cleanup := func() {}
	if cfg.Cache.Path != "" {
		store, err := cache.Open(cfg.Cache)
		if err != nil {
			return nil, nil, fmt.Errorf("opening cache: %w", err)
		}
		deps.Cache = store
		cleanup = func() { store.Close() }
	}

	return pipeline.NewEngine(cfg, deps), cleanup, nil
}
