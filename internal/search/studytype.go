// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// studyTypeRule maps a publication-type phrase to a StudyType. Rules are
// evaluated in order; the first match wins, so more specific phrases come
// first.
type studyTypeRule struct {
	Phrase string
	Type   types.StudyType
}

// DefaultStudyTypeRules is the rule table used to classify the free-text
// publication types returned by the sources. Injectable so tests and
// localized vocabularies can supply their own.
var DefaultStudyTypeRules = []studyTypeRule{
	{"practice guideline", types.StudyGuideline},
	{"guideline", types.StudyGuideline},
	{"meta-analysis", types.StudyMetaAnalysis},
	{"meta analysis", types.StudyMetaAnalysis},
	{"systematic review", types.StudySystematicReview},
	{"randomized controlled trial", types.StudyRCT},
	{"randomised controlled trial", types.StudyRCT},
	{"clinical trial", types.StudyRCT},
	{"cohort", types.StudyCohort},
	{"observational study", types.StudyCohort},
	{"case-control", types.StudyCaseControl},
	{"case control", types.StudyCaseControl},
	{"case series", types.StudyCaseSeries},
	{"case reports", types.StudyCaseReport},
	{"case report", types.StudyCaseReport},
	{"preprint", types.StudyPreprint},
}

// ClassifyStudyType maps a record's publication-type list onto the study
// design enum using the rule table. Unmatched lists yield StudyOther.
func ClassifyStudyType(pubTypes []string, rules []studyTypeRule) types.StudyType {
	if rules == nil {
		rules = DefaultStudyTypeRules
	}
	for _, rule := range rules {
		for _, pt := range pubTypes {
			if strings.Contains(strings.ToLower(pt), rule.Phrase) {
				return rule.Type
			}
		}
	}
	return types.StudyOther
}

// EvidenceLevelFor grades a study type on the A-D hierarchy.
func EvidenceLevelFor(st types.StudyType) types.EvidenceLevel {
	switch st {
	case types.StudyGuideline, types.StudyMetaAnalysis, types.StudySystematicReview:
		return types.EvidenceA
	case types.StudyRCT, types.StudyCohort:
		return types.EvidenceB
	case types.StudyCaseControl, types.StudyCaseSeries:
		return types.EvidenceC
	default:
		return types.EvidenceD
	}
}
