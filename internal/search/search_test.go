// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

type mockSource struct {
	name      string
	ids       []string
	docs      []types.RetrievedDocument
	skipped   int
	searchErr error
	fetchErr  error
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Search(_ context.Context, _ []types.TermQuery, _ types.ReviewFilters) ([]string, error) {
	return m.ids, m.searchErr
}

func (m *mockSource) Fetch(_ context.Context, _ []string) (FetchResult, error) {
	if m.fetchErr != nil {
		return FetchResult{}, m.fetchErr
	}
	return FetchResult{Documents: m.docs, Skipped: m.skipped}, nil
}

func TestBuildBooleanQuery(t *testing.T) {
	quote := func(s string) string { return `"` + s + `"` }

	tests := []struct {
		name  string
		terms []types.TermQuery
		want  string
	}{
		{
			name:  "single term",
			terms: []types.TermQuery{{Text: "knee pain", Category: types.CategoryOutcome}},
			want:  `"knee pain"`,
		},
		{
			name: "or within category",
			terms: []types.TermQuery{
				{Text: "exercise", Category: types.CategoryIntervention},
				{Text: "physical therapy", Category: types.CategoryIntervention},
			},
			want: `("exercise" OR "physical therapy")`,
		},
		{
			name: "and across categories",
			terms: []types.TermQuery{
				{Text: "knee pain", Category: types.CategoryOutcome},
				{Text: "adults", Category: types.CategoryPopulation},
			},
			want: `"adults" AND "knee pain"`,
		},
		{
			name: "blank terms dropped",
			terms: []types.TermQuery{
				{Text: "  ", Category: types.CategoryKeyword},
				{Text: "arthritis", Category: types.CategoryKeyword},
			},
			want: `"arthritis"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildBooleanQuery(tt.terms, quote); got != tt.want {
				t.Errorf("buildBooleanQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetrieveMergesSources(t *testing.T) {
	a := &mockSource{
		name: "alpha",
		ids:  []string{"1"},
		docs: []types.RetrievedDocument{
			{Title: "Shared study", DOI: "10.1000/shared", Source: "alpha", RetrievalScore: 0.9},
		},
	}
	b := &mockSource{
		name:    "beta",
		ids:     []string{"2", "3"},
		skipped: 1,
		docs: []types.RetrievedDocument{
			{Title: "Shared study", DOI: "10.1000/shared", Source: "beta", RetrievalScore: 0.7},
			{Title: "Unique study", PMID: "12345", Source: "beta", RetrievalScore: 0.5},
		},
	}

	var buf bytes.Buffer
	terms := []types.TermQuery{{Text: "knee pain", Category: types.CategoryKeyword}}
	out, err := Retrieve(context.Background(), []Source{a, b}, terms, types.ReviewFilters{}, &buf)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(out.Documents) != 2 {
		t.Fatalf("got %d documents, want 2 after dedup", len(out.Documents))
	}
	if out.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", out.DupsRemoved)
	}
	if out.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", out.Skipped)
	}
	if len(out.SourceErrors) != 0 {
		t.Errorf("unexpected source errors: %v", out.SourceErrors)
	}
}

func TestRetrieveFailingSourceWarnsOnly(t *testing.T) {
	good := &mockSource{
		name: "alpha",
		ids:  []string{"1"},
		docs: []types.RetrievedDocument{{Title: "Kept", PMID: "1", Source: "alpha"}},
	}
	bad := &mockSource{name: "beta", searchErr: fmt.Errorf("boom")}

	var buf bytes.Buffer
	terms := []types.TermQuery{{Text: "asthma", Category: types.CategoryKeyword}}
	out, err := Retrieve(context.Background(), []Source{good, bad}, terms, types.ReviewFilters{}, &buf)
	if err != nil {
		t.Fatalf("Retrieve() error = %v, want run to continue", err)
	}
	if len(out.Documents) != 1 {
		t.Fatalf("got %d documents, want 1 from the surviving source", len(out.Documents))
	}
	if len(out.SourceErrors) != 1 || !strings.Contains(out.SourceErrors[0], "beta") {
		t.Errorf("SourceErrors = %v, want one entry naming beta", out.SourceErrors)
	}
	if !strings.Contains(buf.String(), "warning: source beta") {
		t.Errorf("progress output missing warning: %q", buf.String())
	}
}

func TestRetrieveFetchErrorRecorded(t *testing.T) {
	src := &mockSource{name: "alpha", ids: []string{"1"}, fetchErr: fmt.Errorf("timeout")}

	var buf bytes.Buffer
	terms := []types.TermQuery{{Text: "diabetes", Category: types.CategoryKeyword}}
	out, err := Retrieve(context.Background(), []Source{src}, terms, types.ReviewFilters{}, &buf)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(out.Documents) != 0 {
		t.Errorf("got %d documents, want 0", len(out.Documents))
	}
	if len(out.SourceErrors) != 1 {
		t.Errorf("SourceErrors = %v, want one entry", out.SourceErrors)
	}
}

func TestRetrieveRequiresTerms(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Retrieve(context.Background(), []Source{&mockSource{name: "alpha"}}, nil, types.ReviewFilters{}, &buf); err == nil {
		t.Error("Retrieve() with no terms should fail")
	}
}

func TestRetrieveRequiresSources(t *testing.T) {
	var buf bytes.Buffer
	terms := []types.TermQuery{{Text: "x", Category: types.CategoryKeyword}}
	if _, err := Retrieve(context.Background(), nil, terms, types.ReviewFilters{}, &buf); err == nil {
		t.Error("Retrieve() with no sources should fail")
	}
}
