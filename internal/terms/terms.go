// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package terms turns a free-text clinical query plus NLP hints into
// weighted PICO/MeSH search terms.
package terms

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Term sources recorded on generated TermQuery values.
const (
	sourceQuery = "query"
	sourcePICO  = "pico-hint"
	sourceNLP   = "nlp-hint"
	sourceMeSH  = "mesh-normalization"
)

// Generator builds TermQuery lists. The vocabulary normalization service is
// optional: generation proceeds on NLP hints alone when it is nil or fails.
type Generator struct {
	cfg    types.TermsConfig
	mesh   Normalizer
	logger *slog.Logger
}

// NewGenerator returns a Generator. mesh may be nil to disable
// normalization; logger may be nil for the default logger.
func NewGenerator(cfg types.TermsConfig, mesh Normalizer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxSynonyms <= 0 {
		cfg.MaxSynonyms = 3
	}
	return &Generator{cfg: cfg, mesh: mesh, logger: logger}
}

// Generate classifies NLP hints into PICO buckets and expands them through
// the normalization service. The result is ordered by weight descending,
// then text, and is treated as immutable by downstream stages.
func (g *Generator) Generate(ctx context.Context, query string, hints types.NLPHints) []types.TermQuery {
	var out []types.TermQuery

	if q := strings.TrimSpace(query); q != "" {
		out = append(out, types.TermQuery{
			Text:       q,
			Category:   types.CategoryKeyword,
			Weight:     1.0,
			Source:     sourceQuery,
			Confidence: 1.0,
		})
	}

	// Explicit PICO hints take their stated bucket.
	if p := hints.PICO; p != nil {
		out = appendBucket(out, p.Population, types.CategoryPopulation, 0.9, sourcePICO)
		out = appendBucket(out, p.Intervention, types.CategoryIntervention, 0.9, sourcePICO)
		out = appendBucket(out, p.Comparator, types.CategoryComparator, 0.9, sourcePICO)
		out = appendBucket(out, p.Outcome, types.CategoryOutcome, 0.9, sourcePICO)
	}

	// Category rules for unclassified hints: symptoms describe what the
	// patient population presents with and what outcomes target, entities
	// anchor the population, medications are interventions.
	out = appendBucket(out, hints.Symptoms, types.CategoryOutcome, 0.8, sourceNLP)
	out = appendBucket(out, hints.Symptoms, types.CategoryPopulation, 0.6, sourceNLP)
	out = appendBucket(out, hints.Entities, types.CategoryPopulation, 0.75, sourceNLP)
	out = appendBucket(out, hints.Medications, types.CategoryIntervention, 0.85, sourceNLP)

	if g.mesh != nil && g.cfg.MeshLookupEnabled {
		out = append(out, g.normalize(ctx, hints)...)
	}

	out = dedupeTerms(out)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Text < out[j].Text
	})
	return out
}

// normalize expands each distinct hint through the vocabulary service,
// adding the canonical descriptor and a bounded set of synonyms as
// MeSH-typed terms. Failures are logged and skipped.
func (g *Generator) normalize(ctx context.Context, hints types.NLPHints) []types.TermQuery {
	var out []types.TermQuery

	seen := make(map[string]bool)
	var inputs []string
	for _, group := range [][]string{hints.Symptoms, hints.Entities, hints.Medications} {
		for _, h := range group {
			key := strings.ToLower(strings.TrimSpace(h))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			inputs = append(inputs, h)
		}
	}

	for _, input := range inputs {
		norm, err := g.mesh.Normalize(ctx, input)
		if err != nil {
			g.logger.Warn("mesh normalization failed, continuing without it",
				"term", input, "error", err)
			continue
		}
		if norm.CanonicalTerm != "" {
			out = append(out, types.TermQuery{
				Text:       norm.CanonicalTerm,
				Category:   types.CategoryMeSH,
				Weight:     0.7,
				Source:     sourceMeSH,
				Confidence: 0.9,
			})
		}
		synonyms := norm.Synonyms
		if len(synonyms) > g.cfg.MaxSynonyms {
			synonyms = synonyms[:g.cfg.MaxSynonyms]
		}
		for _, syn := range synonyms {
			out = append(out, types.TermQuery{
				Text:       syn,
				Category:   types.CategoryMeSH,
				Weight:     0.6,
				Source:     sourceMeSH,
				Confidence: 0.7,
			})
		}
	}
	return out
}

func appendBucket(out []types.TermQuery, texts []string, cat types.TermCategory, weight float64, source string) []types.TermQuery {
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, types.TermQuery{
			Text:       t,
			Category:   cat,
			Weight:     weight,
			Source:     source,
			Confidence: weight,
		})
	}
	return out
}

// dedupeTerms drops repeated (text, category) pairs, keeping the heaviest.
func dedupeTerms(terms []types.TermQuery) []types.TermQuery {
	type key struct {
		text string
		cat  types.TermCategory
	}
	best := make(map[key]int)
	var out []types.TermQuery
	for _, t := range terms {
		k := key{strings.ToLower(t.Text), t.Category}
		if idx, ok := best[k]; ok {
			if t.Weight > out[idx].Weight {
				out[idx] = t
			}
			continue
		}
		best[k] = len(out)
		out = append(out, t)
	}
	return out
}
