// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/chunk"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// extractiveSectionFor maps a chunk's source section onto the summary
// section its sentences land in.
var extractiveSectionFor = map[types.ChunkSection]types.SummarySection{
	types.SectionAbstract:   types.SummaryIntroduction,
	types.SectionMethods:    types.SummaryEvaluation,
	types.SectionResults:    types.SummaryTreatment,
	types.SectionDiscussion: types.SummaryClosing,
}

// Extractive builds the deterministic fallback summary straight from the
// chunk text. Every sentence is taken verbatim and tagged with the marker
// of its own source document; nothing is asserted beyond what the chunks
// literally state.
func Extractive(in Input, cfg types.SummaryConfig) types.StructuredSummary {
	maxWords := cfg.MaxWords
	if maxWords <= 0 {
		maxWords = 600
	}

	markerByKey := make(map[string]int, len(in.Documents))
	for i, doc := range in.Documents {
		markerByKey[doc.CanonicalKey] = i + 1
	}

	summary := types.StructuredSummary{
		Sections:   make(map[types.SummarySection]string),
		Extractive: true,
	}
	bodies := make(map[types.SummarySection][]string)
	usedMarkers := make(map[int]bool)
	words := 0

	// Chunks arrive in document rank order; take sentences until the
	// word budget is spent.
	for _, c := range in.Chunks {
		marker, ok := markerByKey[c.SourceDocumentKey]
		if !ok {
			continue
		}
		target := extractiveSectionFor[c.Section]
		if target == "" {
			target = types.SummaryIntroduction
		}
		for _, sentence := range chunk.SplitSentences(c.Text) {
			n := len(strings.Fields(sentence))
			if words+n > maxWords {
				break
			}
			words += n
			tagged := fmt.Sprintf("%s [%d]", sentence, marker)
			bodies[target] = append(bodies[target], tagged)
			usedMarkers[marker] = true
			summary.Claims = append(summary.Claims, types.SentenceClaim{
				Text:            tagged,
				CitationMarkers: []int{marker},
				Section:         target,
			})
		}
	}

	for _, name := range types.SummarySectionOrder {
		if name == types.SummaryReferences {
			summary.Sections[name] = extractiveReferences(in.Documents, usedMarkers)
			continue
		}
		summary.Sections[name] = strings.Join(bodies[name], " ")
	}

	for n := range usedMarkers {
		summary.ReferenceMarkers = append(summary.ReferenceMarkers, n)
	}
	sort.Ints(summary.ReferenceMarkers)

	return summary
}

// extractiveReferences renders the numbered reference list for the markers
// actually used.
func extractiveReferences(docs []types.RetrievedDocument, used map[int]bool) string {
	var lines []string
	for i, doc := range docs {
		marker := i + 1
		if !used[marker] {
			continue
		}
		ref := fmt.Sprintf("%d. %s (%d). %s.", marker, strings.Join(doc.Authors, ", "), doc.Year, doc.Title)
		lines = append(lines, ref)
	}
	return strings.Join(lines, "\n")
}
