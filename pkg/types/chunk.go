// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ChunkSection labels the part of the document a chunk came from.
type ChunkSection string

const (
	SectionAbstract   ChunkSection = "abstract"
	SectionMethods    ChunkSection = "methods"
	SectionResults    ChunkSection = "results"
	SectionDiscussion ChunkSection = "discussion"
)

// EvidenceChunk is an addressable unit of source text. Anchors are immutable
// and referenced by citation mappings: within one pipeline run every
// AnchorID resolves to exactly one chunk.
type EvidenceChunk struct {
	// Text is the chunk content, a fixed-size group of sentences.
	Text string `json:"text" yaml:"text"`

	// Section is the document section the chunk was cut from.
	Section ChunkSection `json:"section" yaml:"section"`

	// ParagraphIndex is the zero-based position of the chunk within its
	// document, in split order.
	ParagraphIndex int `json:"paragraph_index" yaml:"paragraph_index"`

	// AnchorID is a stable identifier derived from the chunk text, the
	// source document key, and the position index.
	AnchorID string `json:"anchor_id" yaml:"anchor_id"`

	// EntityTags are clinical vocabulary terms found in the chunk text.
	EntityTags []string `json:"entity_tags,omitempty" yaml:"entity_tags,omitempty"`

	// SourceDocumentKey is the CanonicalKey of the originating document.
	SourceDocumentKey string `json:"source_document_key" yaml:"source_document_key"`
}
