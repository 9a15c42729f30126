// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"context"
	"testing"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

func testChunk(anchor, key, text string, tags ...string) types.EvidenceChunk {
	return types.EvidenceChunk{
		AnchorID:          anchor,
		SourceDocumentKey: key,
		Text:              text,
		EntityTags:        tags,
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{
			name: "claim contained in longer chunk",
			a:    "Exercise reduces knee pain",
			b:    "Exercise therapy significantly reduces pain in knee osteoarthritis patients",
			min:  0.65,
			max:  1.0,
		},
		{
			name: "identical",
			a:    "Exercise reduces pain",
			b:    "Exercise reduces pain",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "case insensitive",
			a:    "EXERCISE REDUCES PAIN",
			b:    "exercise reduces pain",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "unrelated",
			a:    "Statins lower cholesterol levels",
			b:    "Exercise therapy reduces knee pain",
			min:  0.0,
			max:  0.3,
		},
		{
			name: "empty",
			a:    "",
			b:    "Exercise reduces pain",
			min:  0.0,
			max:  0.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("Similarity() = %f, want in [%f, %f]", got, tt.min, tt.max)
			}
		})
	}
}

func TestVerifySupportedSentence(t *testing.T) {
	claims := []types.SentenceClaim{
		{Text: "Exercise reduces knee pain [1].", CitationMarkers: []int{1}},
	}
	chunks := []types.EvidenceChunk{
		testChunk("a1", "pmid:1", "Exercise therapy significantly reduces pain in knee osteoarthritis patients.", "exercise", "pain", "knee", "osteoarthritis"),
	}
	docs := []types.RetrievedDocument{
		{CanonicalKey: "pmid:1", PMID: "1", StudyType: types.StudyRCT},
	}

	v := NewVerifier(types.VerifyConfig{SimThreshold: 0.65, TopK: 3}, nil, nil)
	mappings, err := v.Verify(context.Background(), claims, chunks, docs)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(mappings) != 1 {
		t.Fatalf("got %d mappings, want 1", len(mappings))
	}

	m := mappings[0]
	if m.Unsupported {
		t.Error("sentence should be supported")
	}
	if m.Confidence <= 0 {
		t.Errorf("Confidence = %f, want > 0", m.Confidence)
	}
	if m.Confidence > 1 {
		t.Errorf("Confidence = %f, out of range", m.Confidence)
	}
	if len(m.SupportingChunkAnchors) != 1 || m.SupportingChunkAnchors[0] != "a1" {
		t.Errorf("SupportingChunkAnchors = %v, want [a1]", m.SupportingChunkAnchors)
	}
	if len(m.CitationIDs) != 1 || m.CitationIDs[0] != 1 {
		t.Errorf("CitationIDs = %v, want [1]", m.CitationIDs)
	}
}

func TestVerifyUnsupportedSentence(t *testing.T) {
	claims := []types.SentenceClaim{
		{Text: "Surgery is always the best first option [1].", CitationMarkers: []int{1}, IsNonConclusive: true},
	}
	chunks := []types.EvidenceChunk{
		testChunk("a1", "pmid:1", "Dietary fiber intake correlates with gut microbiome diversity."),
	}

	v := NewVerifier(types.VerifyConfig{}, nil, nil)
	mappings, err := v.Verify(context.Background(), claims, chunks, nil)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	m := mappings[0]
	if !m.Unsupported {
		t.Error("sentence with no matching chunk must be flagged unsupported")
	}
	if m.Confidence != 0 {
		t.Errorf("Confidence = %f, want 0", m.Confidence)
	}
	if len(m.SupportingChunkAnchors) != 0 {
		t.Errorf("SupportingChunkAnchors = %v, want none", m.SupportingChunkAnchors)
	}
}

func TestVerifyTopKCap(t *testing.T) {
	text := "Exercise therapy reduces knee pain in adults."
	claims := []types.SentenceClaim{{Text: "Exercise reduces knee pain."}}
	var chunks []types.EvidenceChunk
	for _, anchor := range []string{"a1", "a2", "a3", "a4", "a5"} {
		chunks = append(chunks, testChunk(anchor, "pmid:1", text))
	}

	v := NewVerifier(types.VerifyConfig{TopK: 2}, nil, nil)
	mappings, err := v.Verify(context.Background(), claims, chunks, nil)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got := len(mappings[0].SupportingChunkAnchors); got != 2 {
		t.Errorf("got %d supporting anchors, want top_k = 2", got)
	}
}

func TestVerifyMoreSupportRaisesConfidence(t *testing.T) {
	text := "Exercise therapy reduces knee pain in adults."
	claims := []types.SentenceClaim{{Text: "Exercise reduces knee pain."}}
	docs := []types.RetrievedDocument{{CanonicalKey: "pmid:1", PMID: "1", StudyType: types.StudyRCT}}

	v := NewVerifier(types.VerifyConfig{}, nil, nil)

	one, err := v.Verify(context.Background(), claims, []types.EvidenceChunk{testChunk("a1", "pmid:1", text)}, docs)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	three, err := v.Verify(context.Background(), claims, []types.EvidenceChunk{
		testChunk("a1", "pmid:1", text),
		testChunk("a2", "pmid:1", text),
		testChunk("a3", "pmid:1", text),
	}, docs)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if three[0].Confidence <= one[0].Confidence {
		t.Errorf("confidence with three chunks (%f) should exceed one chunk (%f)",
			three[0].Confidence, one[0].Confidence)
	}
}

func TestVerifyPreservesOrder(t *testing.T) {
	claims := []types.SentenceClaim{
		{Text: "First claim about exercise and knee pain."},
		{Text: "Second claim about statins and cholesterol."},
		{Text: "Third claim about asthma inhalers."},
	}
	chunks := []types.EvidenceChunk{
		testChunk("a1", "pmid:1", "Exercise helps knee pain patients."),
	}

	v := NewVerifier(types.VerifyConfig{Workers: 3}, nil, nil)
	mappings, err := v.Verify(context.Background(), claims, chunks, nil)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(mappings) != 3 {
		t.Fatalf("got %d mappings, want 3", len(mappings))
	}
	for i, m := range mappings {
		if m.SentenceID != i {
			t.Errorf("mapping %d has SentenceID %d", i, m.SentenceID)
		}
		if m.SentenceText != claims[i].Text {
			t.Errorf("mapping %d text = %q, want %q", i, m.SentenceText, claims[i].Text)
		}
	}
}

func TestVerifyEmptyClaims(t *testing.T) {
	v := NewVerifier(types.VerifyConfig{}, nil, nil)
	mappings, err := v.Verify(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if mappings != nil {
		t.Errorf("mappings = %v, want nil", mappings)
	}
}

func TestSourceQuality(t *testing.T) {
	tests := []struct {
		name string
		doc  types.RetrievedDocument
		want float64
	}{
		{"indexed rct", types.RetrievedDocument{PMID: "1", StudyType: types.StudyRCT}, 1.0},
		{"indexed preprint", types.RetrievedDocument{DOI: "10.1/x", StudyType: types.StudyPreprint}, 0.5},
		{"unindexed peer reviewed", types.RetrievedDocument{StudyType: types.StudyCohort}, 0.5},
		{"unknown", types.RetrievedDocument{}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sourceQuality(tt.doc); got != tt.want {
				t.Errorf("sourceQuality() = %f, want %f", got, tt.want)
			}
		})
	}
}
