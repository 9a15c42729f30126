// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/chunk"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// markerPattern matches inline numeric citation markers: [1], [12].
var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// referenceLinePattern matches a numbered, non-bulleted reference line:
// "3. Smith, J. (2023)...".
var referenceLinePattern = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)

// Parse validates raw generative output against the section contract and
// builds the structured summary. Violations return an error wrapping
// ErrNonConforming.
func Parse(raw string, cfg types.SummaryConfig) (types.StructuredSummary, error) {
	sections, err := splitSummarySections(raw)
	if err != nil {
		return types.StructuredSummary{}, err
	}

	summary := types.StructuredSummary{Sections: sections}

	minWords, maxWords := cfg.MinWords, cfg.MaxWords
	if minWords <= 0 {
		minWords = 250
	}
	if maxWords <= 0 {
		maxWords = 600
	}
	words := bodyWordCount(sections)
	if words < minWords || words > maxWords {
		return types.StructuredSummary{}, fmt.Errorf("%w: body is %d words, want %d-%d",
			ErrNonConforming, words, minWords, maxWords)
	}

	bodyMarkers := make(map[int]bool)
	for _, name := range types.SummarySectionOrder {
		if name == types.SummaryReferences {
			continue
		}
		for _, sentence := range chunk.SplitSentences(sections[name]) {
			claim := types.SentenceClaim{
				Text:            sentence,
				Section:         name,
				IsNonConclusive: strings.Contains(strings.ToLower(sentence), "non-conclusive"),
			}
			for _, m := range markerPattern.FindAllStringSubmatch(sentence, -1) {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					continue
				}
				claim.CitationMarkers = append(claim.CitationMarkers, n)
				bodyMarkers[n] = true
			}
			if len(claim.CitationMarkers) > 2 {
				return types.StructuredSummary{}, fmt.Errorf("%w: sentence carries %d markers, max 2: %q",
					ErrNonConforming, len(claim.CitationMarkers), sentence)
			}
			summary.Claims = append(summary.Claims, claim)
		}
	}

	refMarkers, err := parseReferenceList(sections[types.SummaryReferences])
	if err != nil {
		return types.StructuredSummary{}, err
	}
	summary.ReferenceMarkers = refMarkers

	// Markers used in the body and numbers declared in References must
	// correspond one to one.
	refSet := make(map[int]bool, len(refMarkers))
	for _, n := range refMarkers {
		refSet[n] = true
	}
	for n := range bodyMarkers {
		if !refSet[n] {
			return types.StructuredSummary{}, fmt.Errorf("%w: marker [%d] has no reference entry", ErrNonConforming, n)
		}
	}
	for _, n := range refMarkers {
		if !bodyMarkers[n] {
			return types.StructuredSummary{}, fmt.Errorf("%w: reference %d is never cited in the body", ErrNonConforming, n)
		}
	}

	return summary, nil
}

// splitSummarySections cuts raw output on "## Heading" lines and checks
// that exactly the six expected sections appear in order.
func splitSummarySections(raw string) (map[types.SummarySection]string, error) {
	var order []types.SummarySection
	sections := make(map[types.SummarySection]string)

	var current types.SummarySection
	var body []string
	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			flush()
			current = types.SummarySection(strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")))
			order = append(order, current)
			continue
		}
		if current == "" {
			if trimmed != "" {
				return nil, fmt.Errorf("%w: text before the first section heading", ErrNonConforming)
			}
			continue
		}
		body = append(body, line)
	}
	flush()

	if len(order) != len(types.SummarySectionOrder) {
		return nil, fmt.Errorf("%w: found %d sections, want %d", ErrNonConforming, len(order), len(types.SummarySectionOrder))
	}
	for i, want := range types.SummarySectionOrder {
		if order[i] != want {
			return nil, fmt.Errorf("%w: section %d is %q, want %q", ErrNonConforming, i, order[i], want)
		}
	}
	return sections, nil
}

// bodyWordCount counts words across the five body sections, excluding
// citation markers.
func bodyWordCount(sections map[types.SummarySection]string) int {
	count := 0
	for _, name := range types.SummarySectionOrder {
		if name == types.SummaryReferences {
			continue
		}
		text := markerPattern.ReplaceAllString(sections[name], "")
		count += len(strings.Fields(text))
	}
	return count
}

// parseReferenceList validates the numbered reference list and returns the
// declared marker numbers, ascending. Bulleted or unnumbered lines are a
// contract violation.
func parseReferenceList(text string) ([]int, error) {
	var markers []int
	seen := make(map[int]bool)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		m := referenceLinePattern.FindStringSubmatch(trimmed)
		if m == nil {
			return nil, fmt.Errorf("%w: reference line is not numbered: %q", ErrNonConforming, trimmed)
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: bad reference number in %q", ErrNonConforming, trimmed)
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: reference %d listed twice", ErrNonConforming, n)
		}
		seen[n] = true
		markers = append(markers, n)
	}
	sort.Ints(markers)
	return markers, nil
}
