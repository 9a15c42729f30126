// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the evidence-engine
// pipeline: search terms, retrieved documents, evidence chunks, structured
// summaries, citation mappings, and stage configuration.
package types

// StudyType is the categorical design label of a publication.
type StudyType string

const (
	StudyGuideline        StudyType = "guideline"
	StudyMetaAnalysis     StudyType = "meta_analysis"
	StudySystematicReview StudyType = "systematic_review"
	StudyRCT              StudyType = "rct"
	StudyCohort           StudyType = "cohort"
	StudyCaseControl      StudyType = "case_control"
	StudyCaseSeries       StudyType = "case_series"
	StudyCaseReport       StudyType = "case_report"
	StudyPreprint         StudyType = "preprint"
	StudyOther            StudyType = "other"
)

// EvidenceLevel is an ordinal grade (A-D) reflecting study design strength.
type EvidenceLevel string

const (
	EvidenceA EvidenceLevel = "A"
	EvidenceB EvidenceLevel = "B"
	EvidenceC EvidenceLevel = "C"
	EvidenceD EvidenceLevel = "D"
)

// RetrievedDocument is a bibliographic record normalized from any source
// into the common schema.
type RetrievedDocument struct {
	// Title is the article title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year (0 if unknown).
	Year int `json:"year" yaml:"year"`

	// DOI is the bare DOI without scheme or resolver prefix (e.g.
	// "10.1001/jama.2023.1234"). Empty if none was found.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// PMID is the PubMed identifier, digits only.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// PMCID is the PubMed Central identifier (e.g. "PMC1234567").
	PMCID string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`

	// Journal is the publication venue.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Volume, Issue and Pages locate the article within the journal.
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue  string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages  string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// Abstract is the article abstract, possibly reassembled from
	// structured sections.
	Abstract string `json:"abstract" yaml:"abstract"`

	// StudyType is the design label inferred from publication types.
	StudyType StudyType `json:"study_type" yaml:"study_type"`

	// EvidenceLevel is the A-D grade derived from StudyType.
	EvidenceLevel EvidenceLevel `json:"evidence_level" yaml:"evidence_level"`

	// RetrievalScore is the source-relative relevance in [0, 1].
	RetrievalScore float64 `json:"retrieval_score" yaml:"retrieval_score"`

	// RankScore is the combined retrieval + clinical score assigned by
	// the re-ranker.
	RankScore float64 `json:"rank_score" yaml:"rank_score"`

	// IsOpenAccess reports whether an open-access copy exists.
	IsOpenAccess bool `json:"is_open_access" yaml:"is_open_access"`

	// HasFullText reports whether full text is retrievable.
	HasFullText bool `json:"has_full_text" yaml:"has_full_text"`

	// Source identifies which adapter produced the record (e.g.
	// "pubmed", "europepmc", or both after a merge).
	Source string `json:"source" yaml:"source"`

	// CanonicalKey is the dedup identity derived from DOI, then PMID,
	// then a title+first-author hash. Unique across a deduplicated set.
	CanonicalKey string `json:"canonical_key" yaml:"canonical_key"`
}
