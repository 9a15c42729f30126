// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify fuzzy-matches generated summary sentences back to
// evidence chunks and assigns a support confidence to each. Sentences no
// chunk supports are flagged, never dropped.
package verify

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/pdiddy/evidence-engine/internal/chunk"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const (
	simWeight     = 0.4
	countWeight   = 0.2
	qualityWeight = 0.2
	entityWeight  = 0.2
)

// Verifier scores summary claims against the chunk set.
type Verifier struct {
	Config types.VerifyConfig
	Vocab  chunk.Vocabulary
	Logger *slog.Logger
}

// NewVerifier wires a verifier. Nil vocab falls back to the default
// clinical vocabulary.
func NewVerifier(cfg types.VerifyConfig, vocab chunk.Vocabulary, logger *slog.Logger) *Verifier {
	if vocab == nil {
		vocab = chunk.DefaultClinicalVocabulary
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{Config: cfg, Vocab: vocab, Logger: logger}
}

// support is one chunk's match against a sentence.
type support struct {
	chunk      types.EvidenceChunk
	similarity float64
}

// Verify maps every claim to its supporting chunks. Claims are scored
// concurrently on a bounded worker pool; output order matches input
// order.
func (v *Verifier) Verify(ctx context.Context, claims []types.SentenceClaim, chunks []types.EvidenceChunk, docs []types.RetrievedDocument) ([]types.SentenceCitationMapping, error) {
	if len(claims) == 0 {
		return nil, nil
	}

	workers := v.Config.Workers
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	docByKey := make(map[string]types.RetrievedDocument, len(docs))
	for _, d := range docs {
		docByKey[d.CanonicalKey] = d
	}

	mappings := make([]types.SentenceCitationMapping, len(claims))
	var wg sync.WaitGroup
	for i, claim := range claims {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			mappings[i] = v.verifySentence(i, claim, chunks, docByKey)
		}
		if err := pool.Submit(task); err != nil {
			// Pool rejected the task; score inline instead.
			task()
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return mappings, nil
}

// verifySentence scores one claim against every chunk and combines the
// evidence into a confidence.
func (v *Verifier) verifySentence(id int, claim types.SentenceClaim, chunks []types.EvidenceChunk, docByKey map[string]types.RetrievedDocument) types.SentenceCitationMapping {
	threshold := v.Config.SimThreshold
	if threshold <= 0 {
		threshold = 0.65
	}
	topK := v.Config.TopK
	if topK <= 0 {
		topK = 3
	}

	mapping := types.SentenceCitationMapping{
		SentenceID:   id,
		SentenceText: claim.Text,
		CitationIDs:  claim.CitationMarkers,
	}

	var supports []support
	for _, c := range chunks {
		sim := Similarity(claim.Text, c.Text)
		if sim >= threshold {
			supports = append(supports, support{chunk: c, similarity: sim})
		}
	}
	if len(supports) == 0 {
		mapping.Unsupported = true
		return mapping
	}

	sort.SliceStable(supports, func(i, j int) bool {
		return supports[i].similarity > supports[j].similarity
	})
	if len(supports) > topK {
		supports = supports[:topK]
	}

	simSum := 0.0
	qualitySum := 0.0
	tagUnion := make(map[string]bool)
	for _, s := range supports {
		mapping.SupportingChunkAnchors = append(mapping.SupportingChunkAnchors, s.chunk.AnchorID)
		simSum += s.similarity
		qualitySum += sourceQuality(docByKey[s.chunk.SourceDocumentKey])
		for _, tag := range s.chunk.EntityTags {
			tagUnion[strings.ToLower(tag)] = true
		}
	}

	avgSim := simSum / float64(len(supports))
	countFactor := float64(len(supports)) / 3.0
	if countFactor > 1 {
		countFactor = 1
	}
	qualityFactor := qualitySum / float64(len(supports))
	entityFactor := overlapRatio(v.Vocab.Tags(claim.Text), tagUnion)

	mapping.Confidence = simWeight*avgSim +
		countWeight*countFactor +
		qualityWeight*qualityFactor +
		entityWeight*entityFactor

	return mapping
}

// sourceQuality rewards indexed, peer-reviewed sources. An identifier in
// a bibliographic index is worth half; a non-preprint design the other
// half.
func sourceQuality(doc types.RetrievedDocument) float64 {
	q := 0.0
	if doc.PMID != "" || doc.DOI != "" {
		q += 0.5
	}
	if doc.StudyType != types.StudyPreprint && doc.StudyType != "" {
		q += 0.5
	}
	return q
}
