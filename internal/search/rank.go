// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"sort"
	"time"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// studyTypePriority is the evidence-hierarchy ordinal table.
var studyTypePriority = map[types.StudyType]int{
	types.StudyGuideline:        10,
	types.StudyMetaAnalysis:     9,
	types.StudySystematicReview: 8,
	types.StudyRCT:              7,
	types.StudyCohort:           6,
	types.StudyCaseControl:      5,
	types.StudyCaseSeries:       4,
	types.StudyCaseReport:       3,
	types.StudyOther:            2,
	types.StudyPreprint:         1,
}

// Rank weights and bonuses.
const (
	retrievalWeight = 0.6
	clinicalWeight  = 0.4

	recencyPenalty  = 0.7 // applied when the document is older than 10 years
	openAccessBonus = 1.1
	fullTextBonus   = 1.2

	// maxClinicalRaw is the largest possible pre-normalization clinical
	// score: top priority with both bonuses.
	maxClinicalRaw = 1.0 * openAccessBonus * fullTextBonus
)

// clinicalScore combines study-type priority, recency, and availability
// into [0, 1].
func clinicalScore(doc types.RetrievedDocument, now time.Time) float64 {
	priority := studyTypePriority[doc.StudyType]
	if priority == 0 {
		priority = studyTypePriority[types.StudyOther]
	}
	score := float64(priority) / 10.0

	if doc.Year > 0 && now.Year()-doc.Year > 10 {
		score *= recencyPenalty
	}
	if doc.IsOpenAccess {
		score *= openAccessBonus
	}
	if doc.HasFullText {
		score *= fullTextBonus
	}

	return score / maxClinicalRaw
}

// Rank assigns RankScore to every document and sorts descending. Ties
// break by study-type priority, then by year descending. The input slice
// is modified in place and returned.
func Rank(docs []types.RetrievedDocument, now time.Time) []types.RetrievedDocument {
	for i := range docs {
		docs[i].RankScore = retrievalWeight*docs[i].RetrievalScore +
			clinicalWeight*clinicalScore(docs[i], now)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].RankScore != docs[j].RankScore {
			return docs[i].RankScore > docs[j].RankScore
		}
		pi, pj := studyTypePriority[docs[i].StudyType], studyTypePriority[docs[j].StudyType]
		if pi != pj {
			return pi > pj
		}
		return docs[i].Year > docs[j].Year
	})
	return docs
}
