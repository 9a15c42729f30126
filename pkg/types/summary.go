// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SummarySection names one of the six fixed summary sections.
type SummarySection string

const (
	SummaryIntroduction SummarySection = "Introduction"
	SummaryEvaluation   SummarySection = "Evaluation"
	SummaryDiagnosis    SummarySection = "Diagnosis"
	SummaryTreatment    SummarySection = "Treatment"
	SummaryClosing      SummarySection = "Closing"
	SummaryReferences   SummarySection = "References"
)

// SummarySectionOrder is the required order of sections in a structured
// summary.
var SummarySectionOrder = []SummarySection{
	SummaryIntroduction,
	SummaryEvaluation,
	SummaryDiagnosis,
	SummaryTreatment,
	SummaryClosing,
	SummaryReferences,
}

// SentenceClaim is a single sentence from the summary body together with
// the citation markers it carries.
type SentenceClaim struct {
	// Text is the sentence without trailing whitespace.
	Text string `json:"text" yaml:"text"`

	// CitationMarkers lists the numeric markers ([n]) attached to the
	// sentence, in order of appearance.
	CitationMarkers []int `json:"citation_markers,omitempty" yaml:"citation_markers,omitempty"`

	// IsNonConclusive reports whether the sentence was explicitly
	// labeled non-conclusive by the summarizer.
	IsNonConclusive bool `json:"is_non_conclusive" yaml:"is_non_conclusive"`

	// Section is the summary section the sentence belongs to.
	Section SummarySection `json:"section" yaml:"section"`
}

// StructuredSummary is the six-section output of the summarization stage.
// Markers used in body text have 1:1 correspondence with the numbered
// reference list.
type StructuredSummary struct {
	// Sections maps each fixed section name to its ordered text, with
	// embedded citation markers [n].
	Sections map[SummarySection]string `json:"sections" yaml:"sections"`

	// Claims lists every body sentence with its markers.
	Claims []SentenceClaim `json:"claims" yaml:"claims"`

	// ReferenceMarkers lists the markers declared in the References
	// section, ascending.
	ReferenceMarkers []int `json:"reference_markers" yaml:"reference_markers"`

	// Extractive reports whether the summary was produced by the
	// deterministic fallback rather than the generative service.
	Extractive bool `json:"extractive" yaml:"extractive"`
}
