// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search retrieves bibliographic records from the literature
// sources, normalizes them into the common schema, deduplicates, filters,
// and re-ranks them by evidentiary strength.
package search

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// FetchResult holds normalized documents plus the count of malformed
// records skipped while parsing. A single bad record never aborts a batch.
type FetchResult struct {
	Documents []types.RetrievedDocument
	Skipped   int
}

// Source is a literature source adapter. Search returns source-native
// document ids for a term set; Fetch resolves ids into normalized records.
type Source interface {
	Name() string
	Search(ctx context.Context, terms []types.TermQuery, filters types.ReviewFilters) ([]string, error)
	Fetch(ctx context.Context, ids []string) (FetchResult, error)
}

// Output holds the retrieval results and per-source statistics.
type Output struct {
	Documents    []types.RetrievedDocument
	DupsRemoved  int
	Skipped      int
	SourceErrors []string
}

// Retrieve fans the term set out to every source concurrently, each under
// its own rate budget, then deduplicates the union. A failing source
// contributes an empty result and a recorded warning instead of aborting
// the run.
func Retrieve(ctx context.Context, sources []Source, terms []types.TermQuery, filters types.ReviewFilters, w io.Writer) (Output, error) {
	if len(terms) == 0 {
		return Output{}, fmt.Errorf("no search terms: generate terms before retrieval")
	}
	if len(sources) == 0 {
		return Output{}, fmt.Errorf("no literature sources configured")
	}

	var mu sync.Mutex
	var all []types.RetrievedDocument
	var sourceErrors []string
	var skipped int

	g, ctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			ids, err := src.Search(ctx, terms, filters)
			if err != nil {
				mu.Lock()
				sourceErrors = append(sourceErrors, fmt.Sprintf("%s: %v", src.Name(), err))
				mu.Unlock()
				fmt.Fprintf(w, "warning: source %s search failed: %v\n", src.Name(), err)
				return nil
			}
			if len(ids) == 0 {
				return nil
			}
			res, err := src.Fetch(ctx, ids)
			if err != nil {
				mu.Lock()
				sourceErrors = append(sourceErrors, fmt.Sprintf("%s: %v", src.Name(), err))
				mu.Unlock()
				fmt.Fprintf(w, "warning: source %s fetch failed: %v\n", src.Name(), err)
				return nil
			}
			mu.Lock()
			all = append(all, res.Documents...)
			skipped += res.Skipped
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Output{}, err
	}

	// Stable union order before dedup so identical inputs produce
	// identical output regardless of goroutine completion order.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Source != all[j].Source {
			return all[i].Source < all[j].Source
		}
		return all[i].RetrievalScore > all[j].RetrievalScore
	})

	deduped, removed := Dedupe(all)

	return Output{
		Documents:    deduped,
		DupsRemoved:  removed,
		Skipped:      skipped,
		SourceErrors: sourceErrors,
	}, nil
}

// groupTerms buckets term texts by category, preserving input order.
func groupTerms(terms []types.TermQuery) map[types.TermCategory][]string {
	grouped := make(map[types.TermCategory][]string)
	for _, t := range terms {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		grouped[t.Category] = append(grouped[t.Category], t.Text)
	}
	return grouped
}

// buildBooleanQuery combines terms into a boolean expression: OR within a
// category, AND across categories. quote wraps each term in source-native
// syntax. Categories appear in a fixed order so expressions are stable.
func buildBooleanQuery(terms []types.TermQuery, quote func(string) string) string {
	grouped := groupTerms(terms)

	order := []types.TermCategory{
		types.CategoryPopulation,
		types.CategoryIntervention,
		types.CategoryComparator,
		types.CategoryOutcome,
		types.CategoryMeSH,
		types.CategoryKeyword,
	}

	var clauses []string
	for _, cat := range order {
		texts := grouped[cat]
		if len(texts) == 0 {
			continue
		}
		quoted := make([]string, len(texts))
		for i, t := range texts {
			quoted[i] = quote(t)
		}
		if len(quoted) == 1 {
			clauses = append(clauses, quoted[0])
			continue
		}
		clauses = append(clauses, "("+strings.Join(quoted, " OR ")+")")
	}
	return strings.Join(clauses, " AND ")
}
