// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"testing"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

func testDocs() []types.RetrievedDocument {
	return []types.RetrievedDocument{
		{Title: "Recent RCT", Year: 2022, StudyType: types.StudyRCT, IsOpenAccess: true, HasFullText: true},
		{Title: "Old cohort", Year: 2008, StudyType: types.StudyCohort},
		{Title: "Preprint", Year: 2023, StudyType: types.StudyPreprint, IsOpenAccess: true},
		{Title: "Paywalled review", Year: 2020, StudyType: types.StudySystematicReview},
	}
}

func TestFilterEmptyConfigPassesAll(t *testing.T) {
	docs := testDocs()
	kept, active := Filter(docs, types.ReviewFilters{})
	if len(kept) != len(docs) {
		t.Errorf("kept = %d, want all %d", len(kept), len(docs))
	}
	if len(active) != 0 {
		t.Errorf("active predicates = %v, want none", active)
	}
}

func TestFilterConjunction(t *testing.T) {
	kept, active := Filter(testDocs(), types.ReviewFilters{
		YearFrom:         2015,
		PeerReviewedOnly: true,
	})

	if len(active) != 2 {
		t.Fatalf("active predicates = %d, want 2", len(active))
	}
	if len(kept) != 2 {
		t.Fatalf("kept = %d, want 2", len(kept))
	}
	for _, d := range kept {
		if d.Year < 2015 {
			t.Errorf("document %q violates year predicate", d.Title)
		}
		if d.StudyType == types.StudyPreprint {
			t.Errorf("document %q violates peer-review predicate", d.Title)
		}
	}
}

func TestFilterStudyDesignAllowList(t *testing.T) {
	kept, _ := Filter(testDocs(), types.ReviewFilters{
		StudyDesigns: []types.StudyType{types.StudyRCT, types.StudySystematicReview},
	})
	if len(kept) != 2 {
		t.Fatalf("kept = %d, want 2", len(kept))
	}
}

func TestFilterAccessPredicates(t *testing.T) {
	kept, _ := Filter(testDocs(), types.ReviewFilters{
		OpenAccessOnly:   true,
		FullTextRequired: true,
	})
	if len(kept) != 1 || kept[0].Title != "Recent RCT" {
		t.Fatalf("kept = %v, want only the open-access full-text document", kept)
	}
}

func TestFilterUnknownYearFailsYearPredicate(t *testing.T) {
	docs := []types.RetrievedDocument{{Title: "No year", Year: 0}}
	kept, _ := Filter(docs, types.ReviewFilters{YearTo: 2024})
	if len(kept) != 0 {
		t.Error("documents without a year must not satisfy an upper year bound")
	}
}
