// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates a review run: term generation, retrieval,
// dedup, filtering, ranking, chunking, summarization, verification, and
// citation formatting. Every stage degrades rather than faults; the caller
// always receives a well-formed result.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/evidence-engine/internal/cache"
	"github.com/pdiddy/evidence-engine/internal/chunk"
	"github.com/pdiddy/evidence-engine/internal/cite"
	"github.com/pdiddy/evidence-engine/internal/search"
	"github.com/pdiddy/evidence-engine/internal/summarize"
	"github.com/pdiddy/evidence-engine/internal/trace"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// TermGenerator produces the ordered search term set.
type TermGenerator interface {
	Generate(ctx context.Context, query string, hints types.NLPHints) []types.TermQuery
}

// Summarizer produces the six-section structured summary.
type Summarizer interface {
	Summarize(ctx context.Context, in summarize.Input) (types.StructuredSummary, error)
}

// Verifier maps summary claims back to supporting chunks.
type Verifier interface {
	Verify(ctx context.Context, claims []types.SentenceClaim, chunks []types.EvidenceChunk, docs []types.RetrievedDocument) ([]types.SentenceCitationMapping, error)
}

// EducationLookup fetches optional patient-education enrichment.
type EducationLookup interface {
	Lookup(ctx context.Context, topic string) ([]types.EducationResource, error)
}

// ResultCache is the read-through query cache. Writes are idempotent
// upserts.
type ResultCache interface {
	Get(key string) ([]byte, error)
	Put(key string, payload []byte) error
}

// Deps carries the injected stage services. Sources that are nil or empty
// disable their stage rather than failing the run.
type Deps struct {
	Terms      TermGenerator
	Sources    []search.Source
	Summarizer Summarizer
	Verifier   Verifier
	Education  EducationLookup
	Cache      ResultCache
	Sink       trace.Sink
	Metrics    *trace.Metrics
	Logger     *slog.Logger
	Progress   io.Writer
}

// Engine runs reviews. Safe for concurrent invocations; no mutable state
// is shared across runs besides the cache and the sinks.
type Engine struct {
	cfg    types.PipelineConfig
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine wires an engine from configuration and injected services.
func NewEngine(cfg types.PipelineConfig, deps Deps) *Engine {
	if deps.Sink == nil {
		deps.Sink = trace.NoopSink{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Progress == nil {
		deps.Progress = io.Discard
	}
	return &Engine{cfg: cfg, deps: deps, logger: deps.Logger, now: time.Now}
}

// Review executes the full pipeline for one request. The only error paths
// are an empty query and a serialization fault; evidence problems and
// source failures degrade to the insufficient-evidence result instead.
func (e *Engine) Review(ctx context.Context, req types.ReviewRequest) (types.ReviewResult, error) {
	if req.Query == "" {
		return types.ReviewResult{}, fmt.Errorf("empty query")
	}

	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)

	var key string
	if e.deps.Cache != nil {
		key = cache.Key(req)
		if payload, err := e.deps.Cache.Get(key); err == nil {
			var cached types.ReviewResult
			if err := json.Unmarshal(payload, &cached); err == nil {
				logger.Info("serving review from cache")
				cached.Stats.CacheHit = true
				return cached, nil
			}
			logger.Warn("discarding unreadable cache entry", "error", err)
		} else if !errors.Is(err, cache.ErrMiss) {
			logger.Warn("cache read failed", "error", err)
		}
	}

	var stats types.ReviewStats
	run := &reviewRun{engine: e, logger: logger, req: req, stats: &stats}

	result := run.execute(ctx)

	if e.deps.Cache != nil && !result.Stats.InsufficientEvidence {
		payload, err := json.Marshal(result)
		if err != nil {
			return types.ReviewResult{}, fmt.Errorf("serializing result: %w", err)
		}
		if err := e.deps.Cache.Put(key, payload); err != nil {
			logger.Warn("cache write failed", "error", err)
		}
	}
	return result, nil
}

// reviewRun holds per-invocation state.
type reviewRun struct {
	engine *Engine
	logger *slog.Logger
	req    types.ReviewRequest
	stats  *types.ReviewStats
}

// stage wraps one pipeline stage with tracing and metrics.
func (r *reviewRun) stage(name, inSummary string, fn func() (string, error)) error {
	e := r.engine
	e.deps.Sink.StageStarted(name)
	start := e.now()
	outSummary, err := fn()
	ev := trace.StageEvent{
		Stage:         name,
		InputSummary:  inSummary,
		OutputSummary: outSummary,
		Duration:      e.now().Sub(start),
		Err:           err,
	}
	e.deps.Sink.StageCompleted(ev)
	if e.deps.Metrics != nil {
		e.deps.Metrics.StageCompleted(ev)
	}
	return err
}

// execute runs the stages in order, jumping to the insufficient-evidence
// path when a deadline expires or no evidence survives.
func (r *reviewRun) execute(ctx context.Context) types.ReviewResult {
	e := r.engine

	// Term generation.
	var terms []types.TermQuery
	r.stage("terms", r.req.Query, func() (string, error) {
		terms = e.deps.Terms.Generate(ctx, r.req.Query, r.req.NLPHints)
		return fmt.Sprintf("%d terms", len(terms)), nil
	})
	r.stats.TermsGenerated = len(terms)
	if len(terms) == 0 {
		return r.insufficient([]string{"no search terms could be generated from the query"})
	}
	if ctx.Err() != nil {
		return r.insufficient([]string{"deadline exceeded during term generation"})
	}

	// Retrieval across sources, then dedup.
	var out search.Output
	r.stage("search", fmt.Sprintf("%d terms, %d sources", len(terms), len(e.deps.Sources)), func() (string, error) {
		var err error
		out, err = search.Retrieve(ctx, e.deps.Sources, terms, r.req.Filters, e.deps.Progress)
		return fmt.Sprintf("%d documents, %d duplicates removed", len(out.Documents), out.DupsRemoved), err
	})
	r.stats.DocumentsRetrieved = len(out.Documents)
	r.stats.SourceErrors = out.SourceErrors
	r.stats.RecordsSkipped = out.Skipped
	if len(out.Documents) == 0 {
		return r.insufficient(r.retrievalGaps(terms))
	}
	if ctx.Err() != nil {
		return r.insufficient([]string{"deadline exceeded during retrieval"})
	}

	// Filter and rank.
	var filtered []types.RetrievedDocument
	var predicates []string
	r.stage("filter", fmt.Sprintf("%d documents", len(out.Documents)), func() (string, error) {
		filtered, predicates = search.Filter(out.Documents, r.req.Filters)
		return fmt.Sprintf("%d documents, %d active predicates", len(filtered), len(predicates)), nil
	})
	r.stats.DocumentsFiltered = len(filtered)
	if e.deps.Metrics != nil && len(out.Documents) > 0 {
		e.deps.Metrics.Set("preprint_filtered_rate",
			float64(len(out.Documents)-len(filtered))/float64(len(out.Documents)))
	}
	if len(filtered) == 0 {
		gaps := make([]string, 0, len(predicates))
		for _, p := range predicates {
			gaps = append(gaps, "no documents satisfied filter: "+p)
		}
		return r.insufficient(gaps)
	}

	var ranked []types.RetrievedDocument
	r.stage("rank", fmt.Sprintf("%d documents", len(filtered)), func() (string, error) {
		ranked = search.Rank(filtered, e.now())
		if max := r.req.Filters.MaxResults; max > 0 && len(ranked) > max {
			ranked = ranked[:max]
		}
		return fmt.Sprintf("%d documents", len(ranked)), nil
	})

	// Chunking.
	var chunks []types.EvidenceChunk
	r.stage("chunk", fmt.Sprintf("%d documents", len(ranked)), func() (string, error) {
		chunks = chunk.Build(ranked, e.cfg.Chunk, nil)
		return fmt.Sprintf("%d chunks", len(chunks)), nil
	})
	r.stats.ChunksCreated = len(chunks)
	if len(chunks) == 0 {
		return r.insufficient([]string{"retrieved documents carry no abstract text"})
	}
	if ctx.Err() != nil {
		return r.insufficient([]string{"deadline exceeded during chunking"})
	}

	// Summarization.
	in := summarize.Input{Query: r.req.Query, Documents: ranked, Chunks: chunks}
	var summary types.StructuredSummary
	var sumErr error
	r.stage("summarize", fmt.Sprintf("%d chunks", len(chunks)), func() (string, error) {
		summary, sumErr = e.deps.Summarizer.Summarize(ctx, in)
		if sumErr != nil {
			return "", sumErr
		}
		return fmt.Sprintf("%d claims, extractive=%t", len(summary.Claims), summary.Extractive), nil
	})
	if sumErr != nil {
		return r.insufficient([]string{"summarization failed: " + sumErr.Error()})
	}
	r.stats.UsedExtractiveFallback = summary.Extractive

	// Verification.
	var mappings []types.SentenceCitationMapping
	var verErr error
	r.stage("verify", fmt.Sprintf("%d claims", len(summary.Claims)), func() (string, error) {
		mappings, verErr = e.deps.Verifier.Verify(ctx, summary.Claims, chunks, ranked)
		return fmt.Sprintf("%d mappings", len(mappings)), verErr
	})
	if verErr != nil {
		r.logger.Warn("verification failed, claims left unverified", "error", verErr)
		mappings = unverifiedMappings(summary.Claims)
	}

	for i, m := range mappings {
		if m.Confidence > 0 {
			r.stats.SentencesWithEvidence++
		} else {
			r.stats.SentencesWithoutEvidence++
		}
		if i < len(summary.Claims) && summary.Claims[i].IsNonConclusive {
			r.stats.NonConclusiveClaims++
		}
	}
	if e.deps.Metrics != nil && len(mappings) > 0 {
		e.deps.Metrics.Set("citation_coverage",
			float64(r.stats.SentencesWithEvidence)/float64(len(mappings)))
	}

	result := types.ReviewResult{
		Summary:           summary,
		SentenceCitations: mappings,
		References:        referencesFor(summary, ranked),
		Stats:             *r.stats,
	}

	// Optional enrichment; failures only log.
	if e.deps.Education != nil && e.cfg.Education.Enabled {
		topic := r.req.Query
		if len(r.req.NLPHints.Entities) > 0 {
			topic = r.req.NLPHints.Entities[0]
		}
		resources, err := e.deps.Education.Lookup(ctx, topic)
		if err != nil {
			r.logger.Warn("education lookup failed", "topic", topic, "error", err)
		} else {
			result.Education = resources
		}
	}

	return result
}

// retrievalGaps names what kept retrieval empty.
func (r *reviewRun) retrievalGaps(terms []types.TermQuery) []string {
	gaps := []string{"no documents retrieved for the generated terms"}
	for _, t := range terms {
		gaps = append(gaps, fmt.Sprintf("term yielded nothing: %s (%s)", t.Text, t.Category))
	}
	return gaps
}

// insufficient renders the structured no-evidence result. It is a normal
// output, not a failure.
func (r *reviewRun) insufficient(gaps []string) types.ReviewResult {
	if len(gaps) == 0 {
		gaps = []string{"no supporting evidence found"}
	}
	r.stats.InsufficientEvidence = true
	r.stats.NonConclusiveClaims++
	r.stats.SentencesWithoutEvidence++

	text := fmt.Sprintf("No sufficient evidence was found for %q; any answer would be non-conclusive.", r.req.Query)
	claim := types.SentenceClaim{
		Text:            text,
		IsNonConclusive: true,
		Section:         types.SummaryClosing,
	}

	sections := make(map[types.SummarySection]string, len(types.SummarySectionOrder))
	for _, name := range types.SummarySectionOrder {
		sections[name] = ""
	}
	sections[types.SummaryClosing] = text

	return types.ReviewResult{
		Summary: types.StructuredSummary{
			Sections: sections,
			Claims:   []types.SentenceClaim{claim},
		},
		SentenceCitations: []types.SentenceCitationMapping{
			{SentenceID: 0, SentenceText: text, Unsupported: true},
		},
		Stats: *r.stats,
		Gaps:  gaps,
	}
}

// unverifiedMappings flags every claim unsupported when the verifier
// itself failed. Claims are never silently dropped.
func unverifiedMappings(claims []types.SentenceClaim) []types.SentenceCitationMapping {
	out := make([]types.SentenceCitationMapping, len(claims))
	for i, c := range claims {
		out[i] = types.SentenceCitationMapping{
			SentenceID:   i,
			SentenceText: c.Text,
			CitationIDs:  c.CitationMarkers,
			Unsupported:  true,
		}
	}
	return out
}

// referencesFor renders final citations for the markers the summary
// actually declares. Markers index into the ranked document list.
func referencesFor(summary types.StructuredSummary, docs []types.RetrievedDocument) []types.FinalCitation {
	if len(summary.ReferenceMarkers) == 0 {
		return cite.References(docs)
	}
	var refs []types.FinalCitation
	for _, n := range summary.ReferenceMarkers {
		if n < 1 || n > len(docs) {
			continue
		}
		doc := docs[n-1]
		refs = append(refs, types.FinalCitation{
			Marker:      n,
			Text:        cite.APA(doc),
			DocumentKey: doc.CanonicalKey,
		})
	}
	return refs
}
