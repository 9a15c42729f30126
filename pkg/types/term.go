// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TermCategory classifies a search term within the PICO framework or as a
// controlled-vocabulary / free-text term.
type TermCategory string

const (
	CategoryPopulation   TermCategory = "population"
	CategoryIntervention TermCategory = "intervention"
	CategoryComparator   TermCategory = "comparator"
	CategoryOutcome      TermCategory = "outcome"
	CategoryMeSH         TermCategory = "mesh"
	CategoryKeyword      TermCategory = "keyword"
)

// TermQuery is a single weighted search term. Instances are immutable once
// generated; downstream stages only read them.
type TermQuery struct {
	// Text is the term as it will appear in source query expressions.
	Text string `json:"text" yaml:"text"`

	// Category places the term in a PICO bucket, or marks it as a MeSH
	// descriptor or plain keyword.
	Category TermCategory `json:"category" yaml:"category"`

	// Weight is the term's relative importance in [0, 1].
	Weight float64 `json:"weight" yaml:"weight"`

	// Source identifies where the term came from (e.g. "nlp-hint",
	// "mesh-normalization", "query").
	Source string `json:"source" yaml:"source"`

	// Confidence expresses how certain the generator is that the term
	// belongs in its category, in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
}
