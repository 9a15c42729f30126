// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package terms

import (
	"context"
	"fmt"
	"testing"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// --- mock normalizer ---

type mockNormalizer struct {
	norms map[string]Normalization
	err   error
}

func (m *mockNormalizer) Normalize(_ context.Context, text string) (Normalization, error) {
	if m.err != nil {
		return Normalization{}, m.err
	}
	n, ok := m.norms[text]
	if !ok {
		return Normalization{}, fmt.Errorf("no descriptor for %q", text)
	}
	return n, nil
}

func testCfg() types.TermsConfig {
	return types.TermsConfig{
		MeshLookupEnabled: true,
		MaxSynonyms:       3,
	}
}

func findTerm(terms []types.TermQuery, text string, cat types.TermCategory) *types.TermQuery {
	for i := range terms {
		if terms[i].Text == text && terms[i].Category == cat {
			return &terms[i]
		}
	}
	return nil
}

func TestGenerateClassifiesHints(t *testing.T) {
	g := NewGenerator(testCfg(), nil, nil)

	got := g.Generate(context.Background(), "knee pain exercise therapy", types.NLPHints{
		Symptoms:    []string{"knee pain"},
		Entities:    []string{"knee"},
		Medications: []string{"ibuprofen"},
	})

	if q := findTerm(got, "knee pain exercise therapy", types.CategoryKeyword); q == nil {
		t.Fatal("query keyword term missing")
	}
	if s := findTerm(got, "knee pain", types.CategoryOutcome); s == nil {
		t.Error("symptom should map to an outcome term")
	}
	if s := findTerm(got, "knee pain", types.CategoryPopulation); s == nil {
		t.Error("symptom should also seed the population bucket")
	}
	if e := findTerm(got, "knee", types.CategoryPopulation); e == nil {
		t.Error("entity should map to a population term")
	}
	if m := findTerm(got, "ibuprofen", types.CategoryIntervention); m == nil {
		t.Error("medication should map to an intervention term")
	}
}

func TestGeneratePICOHintsOverride(t *testing.T) {
	g := NewGenerator(testCfg(), nil, nil)

	got := g.Generate(context.Background(), "q", types.NLPHints{
		PICO: &types.PICOHints{
			Population:   []string{"adults with osteoarthritis"},
			Intervention: []string{"exercise therapy"},
			Comparator:   []string{"usual care"},
			Outcome:      []string{"pain reduction"},
		},
	})

	for _, want := range []struct {
		text string
		cat  types.TermCategory
	}{
		{"adults with osteoarthritis", types.CategoryPopulation},
		{"exercise therapy", types.CategoryIntervention},
		{"usual care", types.CategoryComparator},
		{"pain reduction", types.CategoryOutcome},
	} {
		if findTerm(got, want.text, want.cat) == nil {
			t.Errorf("missing %s term %q", want.cat, want.text)
		}
	}
}

func TestGenerateAddsMeshTerms(t *testing.T) {
	mesh := &mockNormalizer{norms: map[string]Normalization{
		"knee pain": {
			CanonicalTerm: "Arthralgia",
			Synonyms:      []string{"Joint Pain", "Polyarthralgia", "Monoarthralgia", "Extra"},
		},
	}}
	g := NewGenerator(testCfg(), mesh, nil)

	got := g.Generate(context.Background(), "", types.NLPHints{
		Symptoms: []string{"knee pain"},
	})

	canonical := findTerm(got, "Arthralgia", types.CategoryMeSH)
	if canonical == nil {
		t.Fatal("canonical MeSH term missing")
	}
	if canonical.Confidence < 0.7 || canonical.Confidence > 0.9 {
		t.Errorf("canonical confidence = %f, want in [0.7, 0.9]", canonical.Confidence)
	}

	// Synonyms are bounded at MaxSynonyms.
	var synCount int
	for _, tq := range got {
		if tq.Category == types.CategoryMeSH && tq.Text != "Arthralgia" {
			synCount++
		}
	}
	if synCount != 3 {
		t.Errorf("synonym terms = %d, want 3", synCount)
	}
}

func TestGenerateFailsSoftWithoutNormalization(t *testing.T) {
	mesh := &mockNormalizer{err: fmt.Errorf("service unavailable")}
	g := NewGenerator(testCfg(), mesh, nil)

	got := g.Generate(context.Background(), "back pain", types.NLPHints{
		Symptoms: []string{"back pain"},
	})

	if len(got) == 0 {
		t.Fatal("generation must proceed on NLP hints when normalization fails")
	}
	for _, tq := range got {
		if tq.Category == types.CategoryMeSH {
			t.Errorf("unexpected MeSH term %q after normalization failure", tq.Text)
		}
	}
}

func TestGenerateOrderedByWeight(t *testing.T) {
	g := NewGenerator(testCfg(), nil, nil)

	got := g.Generate(context.Background(), "q", types.NLPHints{
		Symptoms:    []string{"dizziness"},
		Medications: []string{"meclizine"},
	})

	for i := 1; i < len(got); i++ {
		if got[i].Weight > got[i-1].Weight {
			t.Fatalf("terms not ordered by weight: %v before %v", got[i-1], got[i])
		}
	}
}

func TestGenerateDeduplicates(t *testing.T) {
	g := NewGenerator(testCfg(), nil, nil)

	got := g.Generate(context.Background(), "", types.NLPHints{
		Symptoms: []string{"Knee Pain", "knee pain"},
	})

	var outcomes int
	for _, tq := range got {
		if tq.Category == types.CategoryOutcome {
			outcomes++
		}
	}
	if outcomes != 1 {
		t.Errorf("outcome terms = %d, want 1 after dedup", outcomes)
	}
}
