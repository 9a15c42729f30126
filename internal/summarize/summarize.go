// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns a ranked evidence chunk set into a six-section
// structured summary with inline citation markers. The generative service
// sits behind the Generator port; when it is unreachable or returns
// non-conforming output, a deterministic extractive summary is built
// instead.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Generator abstracts the generative text service so tests can supply a
// deterministic fixture.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// retryBase controls the base duration for backoff between generation
// attempts. Tests override this to avoid real sleeps.
var retryBase = time.Second

// Summarizer drives generation, contract validation, and fallback.
type Summarizer struct {
	Gen    Generator
	Config types.SummaryConfig
	Logger *slog.Logger
}

// NewSummarizer wires a summarizer. A nil generator is allowed; every run
// then takes the extractive path.
func NewSummarizer(gen Generator, cfg types.SummaryConfig, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{Gen: gen, Config: cfg, Logger: logger}
}

// Input carries everything the summarizer needs for one run. Documents
// are in rank order; marker [i+1] refers to Documents[i].
type Input struct {
	Query     string
	Documents []types.RetrievedDocument
	Chunks    []types.EvidenceChunk
}

// Summarize produces the structured summary. Generation is attempted up
// to MaxRetries+1 times; any persistent failure degrades to the
// extractive summary, never to an error, as long as chunks exist.
func (s *Summarizer) Summarize(ctx context.Context, in Input) (types.StructuredSummary, error) {
	if len(in.Chunks) == 0 {
		return types.StructuredSummary{}, ErrNoChunks
	}

	if s.Gen == nil {
		s.Logger.Info("no generative service configured, using extractive summary")
		return Extractive(in, s.Config), nil
	}

	prompt, err := renderPrompt(in.Query, in.Documents, in.Chunks, s.Config)
	if err != nil {
		return types.StructuredSummary{}, err
	}

	maxRetries := s.Config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * retryBase
			select {
			case <-ctx.Done():
				s.Logger.Warn("generation cancelled, using extractive summary", "error", ctx.Err())
				return Extractive(in, s.Config), nil
			case <-time.After(backoff):
			}
		}

		raw, err := s.Gen.Generate(ctx, prompt)
		if err != nil {
			lastErr = fmt.Errorf("generation attempt %d: %w", attempt+1, err)
			s.Logger.Warn("generation failed", "attempt", attempt+1, "error", err)
			continue
		}

		summary, err := Parse(raw, s.Config)
		if err != nil {
			lastErr = err
			s.Logger.Warn("generated summary rejected", "attempt", attempt+1, "error", err)
			continue
		}
		return summary, nil
	}

	s.Logger.Warn("generation exhausted retries, using extractive summary", "error", lastErr)
	return Extractive(in, s.Config), nil
}
