// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// predicate is one policy test. Name becomes part of the gap report when
// the filter set eliminates every document.
type predicate struct {
	Name string
	Keep func(types.RetrievedDocument) bool
}

// activePredicates builds the predicate list for a filter configuration.
// Unset fields contribute no predicate; an empty configuration passes every
// document.
func activePredicates(f types.ReviewFilters) []predicate {
	var preds []predicate

	if f.YearFrom > 0 {
		preds = append(preds, predicate{
			Name: fmt.Sprintf("year >= %d", f.YearFrom),
			Keep: func(d types.RetrievedDocument) bool { return d.Year >= f.YearFrom },
		})
	}
	if f.YearTo > 0 {
		preds = append(preds, predicate{
			Name: fmt.Sprintf("year <= %d", f.YearTo),
			Keep: func(d types.RetrievedDocument) bool { return d.Year > 0 && d.Year <= f.YearTo },
		})
	}
	if f.PeerReviewedOnly {
		preds = append(preds, predicate{
			Name: "peer-reviewed only",
			Keep: func(d types.RetrievedDocument) bool { return d.StudyType != types.StudyPreprint },
		})
	}
	if len(f.StudyDesigns) > 0 {
		allowed := make(map[types.StudyType]bool, len(f.StudyDesigns))
		for _, st := range f.StudyDesigns {
			allowed[st] = true
		}
		preds = append(preds, predicate{
			Name: fmt.Sprintf("study design in %v", f.StudyDesigns),
			Keep: func(d types.RetrievedDocument) bool { return allowed[d.StudyType] },
		})
	}
	if f.OpenAccessOnly {
		preds = append(preds, predicate{
			Name: "open access only",
			Keep: func(d types.RetrievedDocument) bool { return d.IsOpenAccess },
		})
	}
	if f.FullTextRequired {
		preds = append(preds, predicate{
			Name: "full text required",
			Keep: func(d types.RetrievedDocument) bool { return d.HasFullText },
		})
	}
	return preds
}

// Filter keeps documents satisfying every active predicate and returns
// them with the list of active predicate names for gap reporting.
func Filter(docs []types.RetrievedDocument, f types.ReviewFilters) ([]types.RetrievedDocument, []string) {
	preds := activePredicates(f)

	names := make([]string, len(preds))
	for i, p := range preds {
		names[i] = p.Name
	}
	if len(preds) == 0 {
		return docs, names
	}

	var kept []types.RetrievedDocument
	for _, doc := range docs {
		ok := true
		for _, p := range preds {
			if !p.Keep(doc) {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, doc)
		}
	}
	return kept, names
}
