// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"strings"
	"unicode"
)

// stopwords are excluded from token sets; they carry no clinical signal
// and inflate the denominator.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "the": true, "to": true,
	"was": true, "were": true, "with": true, "that": true, "this": true,
}

// tokenSet lowercases text, strips punctuation and numeric citation
// markers, and returns the set of content tokens.
func tokenSet(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		if isAllDigits(f) {
			continue
		}
		set[f] = true
	}
	return set
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

// Similarity is a token-set overlap ratio in [0, 1], case-insensitive:
// the shared-token count over the size of the smaller set. A short claim
// fully contained in a longer chunk scores 1.0.
func Similarity(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	shared := 0
	small, large := sa, sb
	if len(sb) < len(sa) {
		small, large = sb, sa
	}
	for tok := range small {
		if large[tok] {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

// overlapRatio is the fraction of want entries present in have. Empty
// want yields 0.
func overlapRatio(want []string, have map[string]bool) float64 {
	if len(want) == 0 {
		return 0
	}
	shared := 0
	for _, w := range want {
		if have[strings.ToLower(w)] {
			shared++
		}
	}
	return float64(shared) / float64(len(want))
}
