// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import "strings"

// Vocabulary is an injectable clinical-term list used to tag chunk text.
type Vocabulary []string

// DefaultClinicalVocabulary covers the common anatomy, condition, and
// intervention terms seen in abstracts. Callers with a specialty focus
// supply their own list.
var DefaultClinicalVocabulary = Vocabulary{
	"pain",
	"knee",
	"hip",
	"shoulder",
	"spine",
	"back",
	"exercise",
	"physical therapy",
	"physiotherapy",
	"surgery",
	"arthritis",
	"osteoarthritis",
	"rheumatoid",
	"inflammation",
	"fracture",
	"diabetes",
	"hypertension",
	"asthma",
	"migraine",
	"headache",
	"depression",
	"anxiety",
	"cancer",
	"tumor",
	"infection",
	"antibiotic",
	"placebo",
	"nsaid",
	"ibuprofen",
	"corticosteroid",
	"opioid",
	"triptan",
	"statin",
	"insulin",
	"rehabilitation",
	"mobility",
	"stiffness",
	"swelling",
	"cartilage",
	"tendon",
	"ligament",
}

// Tags returns every vocabulary term present in text, case-insensitive,
// in vocabulary order. Nil when nothing matches.
func (v Vocabulary) Tags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, term := range v {
		if strings.Contains(lower, strings.ToLower(term)) {
			tags = append(tags, term)
		}
	}
	return tags
}
