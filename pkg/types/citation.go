// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SentenceCitationMapping records the verification outcome for one summary
// sentence. A confidence above zero implies at least one supporting anchor
// whose similarity to the sentence met the configured threshold.
type SentenceCitationMapping struct {
	// SentenceID is the zero-based index of the sentence within the
	// summary claim list.
	SentenceID int `json:"sentence_id" yaml:"sentence_id"`

	// SentenceText is the sentence as generated.
	SentenceText string `json:"sentence_text" yaml:"sentence_text"`

	// CitationIDs lists the numeric citation markers assigned to the
	// sentence.
	CitationIDs []int `json:"citation_ids,omitempty" yaml:"citation_ids,omitempty"`

	// SupportingChunkAnchors lists anchor IDs of chunks whose similarity
	// to the sentence met the threshold, best first.
	SupportingChunkAnchors []string `json:"supporting_chunk_anchors,omitempty" yaml:"supporting_chunk_anchors,omitempty"`

	// Confidence is the combined support score in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Unsupported is set when no chunk met the similarity threshold.
	Unsupported bool `json:"unsupported,omitempty" yaml:"unsupported,omitempty"`
}

// FinalCitation is an APA-formatted bibliography entry keyed by its
// citation marker.
type FinalCitation struct {
	// Marker is the numeric citation marker used in body text.
	Marker int `json:"marker" yaml:"marker"`

	// Text is the APA 7th-edition reference string.
	Text string `json:"text" yaml:"text"`

	// DocumentKey is the CanonicalKey of the cited document.
	DocumentKey string `json:"document_key" yaml:"document_key"`
}
