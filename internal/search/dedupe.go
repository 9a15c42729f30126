// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// CanonicalKey derives the dedup identity for a document. The priority
// chain is fixed: normalized DOI, then PMID, then a hash of the lowercased
// title plus lowercased first author. This is the only place the chain is
// applied.
func CanonicalKey(doc types.RetrievedDocument) string {
	if d := NormalizeDOI(doc.DOI); d != "" {
		return "doi:" + d
	}
	if p := strings.TrimSpace(doc.PMID); p != "" && pmidPattern.MatchString(p) {
		return "pmid:" + p
	}

	firstAuthor := ""
	if len(doc.Authors) > 0 {
		firstAuthor = doc.Authors[0]
	}
	sum := sha256.Sum256([]byte(strings.ToLower(doc.Title) + "|" + strings.ToLower(firstAuthor)))
	return "title:" + hex.EncodeToString(sum[:8])
}

// Dedupe merges documents sharing a canonical key and returns the unique
// set plus the number of records merged away. The survivor keeps the
// higher retrieval score; access flags are ORed together and empty fields
// are filled from the duplicate.
func Dedupe(docs []types.RetrievedDocument) ([]types.RetrievedDocument, int) {
	seen := make(map[string]int) // canonical key → index in deduped
	var deduped []types.RetrievedDocument
	removed := 0

	for _, doc := range docs {
		doc.CanonicalKey = CanonicalKey(doc)
		if idx, ok := seen[doc.CanonicalKey]; ok {
			mergeInto(&deduped[idx], doc)
			removed++
			continue
		}
		seen[doc.CanonicalKey] = len(deduped)
		deduped = append(deduped, doc)
	}
	return deduped, removed
}

// mergeInto folds src into dst: higher score wins, access flags are ORed,
// and missing bibliographic fields are filled from src.
func mergeInto(dst *types.RetrievedDocument, src types.RetrievedDocument) {
	if src.RetrievalScore > dst.RetrievalScore {
		dst.RetrievalScore = src.RetrievalScore
	}
	dst.IsOpenAccess = dst.IsOpenAccess || src.IsOpenAccess
	dst.HasFullText = dst.HasFullText || src.HasFullText

	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if dst.PMID == "" {
		dst.PMID = src.PMID
	}
	if dst.PMCID == "" {
		dst.PMCID = src.PMCID
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if dst.Journal == "" {
		dst.Journal = src.Journal
	}
	if dst.Volume == "" {
		dst.Volume = src.Volume
	}
	if dst.Issue == "" {
		dst.Issue = src.Issue
	}
	if dst.Pages == "" {
		dst.Pages = src.Pages
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
	if dst.Year == 0 {
		dst.Year = src.Year
	}
	// A specific study type beats "other".
	if dst.StudyType == types.StudyOther && src.StudyType != types.StudyOther {
		dst.StudyType = src.StudyType
		dst.EvidenceLevel = src.EvidenceLevel
	}
	if dst.Source != src.Source && !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + "," + src.Source
	}
}
