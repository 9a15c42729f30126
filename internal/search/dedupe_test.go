// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"
	"testing"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

func TestCanonicalKeyPriorityChain(t *testing.T) {
	withAll := types.RetrievedDocument{
		Title:   "Exercise for Knee Osteoarthritis",
		Authors: []string{"Jane Smith"},
		DOI:     "10.1001/jama.2023.1234",
		PMID:    "34567890",
	}
	if got := CanonicalKey(withAll); got != "doi:10.1001/jama.2023.1234" {
		t.Errorf("key = %q, want DOI to win the chain", got)
	}

	withPMID := withAll
	withPMID.DOI = ""
	if got := CanonicalKey(withPMID); got != "pmid:34567890" {
		t.Errorf("key = %q, want PMID fallback", got)
	}

	titleOnly := withAll
	titleOnly.DOI = ""
	titleOnly.PMID = ""
	got := CanonicalKey(titleOnly)
	if !strings.HasPrefix(got, "title:") {
		t.Errorf("key = %q, want title-hash fallback", got)
	}

	// Title hash is case-insensitive over title and first author.
	upper := titleOnly
	upper.Title = strings.ToUpper(titleOnly.Title)
	upper.Authors = []string{"JANE SMITH"}
	if CanonicalKey(upper) != got {
		t.Error("title-hash key should be case-insensitive")
	}
}

func TestDedupeMergesSharedKey(t *testing.T) {
	docs := []types.RetrievedDocument{
		{
			Title:          "Paper A",
			DOI:            "10.1001/a",
			RetrievalScore: 0.9,
			IsOpenAccess:   false,
			HasFullText:    true,
			Source:         "pubmed",
		},
		{
			Title:          "Paper A",
			DOI:            "https://doi.org/10.1001/A",
			RetrievalScore: 0.7,
			IsOpenAccess:   true,
			HasFullText:    false,
			Source:         "europepmc",
			Journal:        "JAMA",
		},
	}

	deduped, removed := Dedupe(docs)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(deduped) != 1 {
		t.Fatalf("len(deduped) = %d, want 1", len(deduped))
	}

	d := deduped[0]
	if d.RetrievalScore != 0.9 {
		t.Errorf("score = %f, want max of both", d.RetrievalScore)
	}
	if !d.IsOpenAccess || !d.HasFullText {
		t.Error("access flags must be the OR of both originals")
	}
	if d.Journal != "JAMA" {
		t.Error("empty fields should be filled from the duplicate")
	}
	if !strings.Contains(d.Source, "pubmed") || !strings.Contains(d.Source, "europepmc") {
		t.Errorf("source = %q, want both sources recorded", d.Source)
	}
}

func TestDedupeKeysAreUnique(t *testing.T) {
	docs := []types.RetrievedDocument{
		{Title: "A", DOI: "10.1/a"},
		{Title: "A dup", DOI: "10.1/a"},
		{Title: "B", PMID: "123"},
		{Title: "B dup", PMID: "123"},
		{Title: "C", Authors: []string{"X"}},
	}

	deduped, removed := Dedupe(docs)
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	seen := make(map[string]bool)
	for _, d := range deduped {
		if d.CanonicalKey == "" {
			t.Fatalf("document %q has empty canonical key", d.Title)
		}
		if seen[d.CanonicalKey] {
			t.Fatalf("duplicate canonical key %q survived", d.CanonicalKey)
		}
		seen[d.CanonicalKey] = true
	}
}

func TestDedupeKeepsSpecificStudyType(t *testing.T) {
	docs := []types.RetrievedDocument{
		{Title: "A", DOI: "10.1/a", StudyType: types.StudyOther, RetrievalScore: 0.9},
		{Title: "A", DOI: "10.1/a", StudyType: types.StudyRCT, EvidenceLevel: types.EvidenceB},
	}

	deduped, _ := Dedupe(docs)
	if deduped[0].StudyType != types.StudyRCT {
		t.Errorf("study type = %q, want the specific label to survive the merge", deduped[0].StudyType)
	}
}
