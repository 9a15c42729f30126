// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PICOHints optionally pre-assigns terms to PICO buckets.
type PICOHints struct {
	Population   []string `json:"population,omitempty" yaml:"population,omitempty"`
	Intervention []string `json:"intervention,omitempty" yaml:"intervention,omitempty"`
	Comparator   []string `json:"comparator,omitempty" yaml:"comparator,omitempty"`
	Outcome      []string `json:"outcome,omitempty" yaml:"outcome,omitempty"`
}

// NLPHints is the output of the external clinical NLP front-end consumed by
// the term generator.
type NLPHints struct {
	// Symptoms lists symptom phrases extracted from the query.
	Symptoms []string `json:"symptoms,omitempty" yaml:"symptoms,omitempty"`

	// Entities lists anatomical or condition entities.
	Entities []string `json:"entities,omitempty" yaml:"entities,omitempty"`

	// Medications lists drug or therapy mentions.
	Medications []string `json:"medications,omitempty" yaml:"medications,omitempty"`

	// PICO carries optional pre-classified terms.
	PICO *PICOHints `json:"pico_hints,omitempty" yaml:"pico_hints,omitempty"`
}

// ReviewFilters is the policy configuration applied after retrieval.
// A zero-value field disables that predicate; a zero-value struct passes
// every document.
type ReviewFilters struct {
	// YearFrom and YearTo bound the publication year, inclusive.
	YearFrom int `json:"year_from,omitempty" yaml:"year_from,omitempty"`
	YearTo   int `json:"year_to,omitempty" yaml:"year_to,omitempty"`

	// PeerReviewedOnly excludes preprints.
	PeerReviewedOnly bool `json:"peer_reviewed_only,omitempty" yaml:"peer_reviewed_only,omitempty"`

	// StudyDesigns is an allow-list of study types. Empty allows all.
	StudyDesigns []StudyType `json:"study_designs,omitempty" yaml:"study_designs,omitempty"`

	// OpenAccessOnly keeps only open-access documents.
	OpenAccessOnly bool `json:"open_access_only,omitempty" yaml:"open_access_only,omitempty"`

	// FullTextRequired keeps only documents with retrievable full text.
	FullTextRequired bool `json:"full_text_required,omitempty" yaml:"full_text_required,omitempty"`

	// MaxResults caps the number of documents entering the chunker.
	MaxResults int `json:"max_results,omitempty" yaml:"max_results,omitempty"`
}

// ReviewRequest is the input contract of the pipeline.
type ReviewRequest struct {
	// Query is the free-text clinical question.
	Query string `json:"query" yaml:"query"`

	// NLPHints carries symptom/entity/medication extractions.
	NLPHints NLPHints `json:"nlp_hints" yaml:"nlp_hints"`

	// Filters is the retrieval policy. Optional.
	Filters ReviewFilters `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// ReviewStats surfaces per-stage counts in the output contract. Every error
// kind from the taxonomy shows up here rather than as a raw fault.
type ReviewStats struct {
	TermsGenerated           int `json:"terms_generated" yaml:"terms_generated"`
	DocumentsRetrieved       int `json:"documents_retrieved" yaml:"documents_retrieved"`
	DocumentsFiltered        int `json:"documents_filtered" yaml:"documents_filtered"`
	ChunksCreated            int `json:"chunks_created" yaml:"chunks_created"`
	SentencesWithEvidence    int `json:"sentences_with_evidence" yaml:"sentences_with_evidence"`
	SentencesWithoutEvidence int `json:"sentences_without_evidence" yaml:"sentences_without_evidence"`
	NonConclusiveClaims      int `json:"non_conclusive_claims" yaml:"non_conclusive_claims"`

	// SourceErrors lists per-source failures that degraded retrieval.
	SourceErrors []string `json:"source_errors,omitempty" yaml:"source_errors,omitempty"`

	// RecordsSkipped counts malformed records dropped during parsing.
	RecordsSkipped int `json:"records_skipped,omitempty" yaml:"records_skipped,omitempty"`

	// UsedExtractiveFallback reports that the generative service was
	// unavailable or non-conforming.
	UsedExtractiveFallback bool `json:"used_extractive_fallback,omitempty" yaml:"used_extractive_fallback,omitempty"`

	// InsufficientEvidence reports that the review degraded to the
	// no-evidence path.
	InsufficientEvidence bool `json:"insufficient_evidence,omitempty" yaml:"insufficient_evidence,omitempty"`

	// CacheHit reports that the result was served from the query cache.
	CacheHit bool `json:"cache_hit,omitempty" yaml:"cache_hit,omitempty"`
}

// EducationResource is an optional patient-education enrichment entry.
type EducationResource struct {
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary" yaml:"summary"`
	URL     string `json:"url" yaml:"url"`
}

// ReviewResult is the output contract of the pipeline. The caller always
// receives a well-formed result, even on the insufficient-evidence path.
type ReviewResult struct {
	Summary           StructuredSummary         `json:"summary" yaml:"summary"`
	SentenceCitations []SentenceCitationMapping `json:"sentence_citations" yaml:"sentence_citations"`
	References        []FinalCitation           `json:"references" yaml:"references"`
	Education         []EducationResource       `json:"education,omitempty" yaml:"education,omitempty"`
	Stats             ReviewStats               `json:"stats" yaml:"stats"`

	// Gaps enumerates term/filter gaps on the insufficient-evidence
	// path (empty otherwise).
	Gaps []string `json:"gaps,omitempty" yaml:"gaps,omitempty"`
}
