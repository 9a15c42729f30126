// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite renders APA 7th-edition reference strings for retrieved
// documents.
package cite

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// minorWords stay lowercase in title case unless they open the title.
var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "but": true,
	"by": true, "for": true, "in": true, "of": true, "on": true, "or": true,
	"the": true, "to": true, "up": true,
}

const maxListedAuthors = 20

// APA formats one document as an APA reference string.
func APA(doc types.RetrievedDocument) string {
	var b strings.Builder

	if authors := formatAuthors(doc.Authors); authors != "" {
		b.WriteString(authors)
		b.WriteString(" ")
	}
	if doc.Year > 0 {
		fmt.Fprintf(&b, "(%d). ", doc.Year)
	}
	if doc.Title != "" {
		b.WriteString(TitleCase(doc.Title))
		if !strings.HasSuffix(doc.Title, ".") && !strings.HasSuffix(doc.Title, "?") && !strings.HasSuffix(doc.Title, "!") {
			b.WriteString(".")
		}
		b.WriteString(" ")
	}
	if doc.Journal != "" {
		b.WriteString(doc.Journal)
		if doc.Volume != "" {
			b.WriteString(", ")
			b.WriteString(doc.Volume)
			if doc.Issue != "" {
				fmt.Fprintf(&b, "(%s)", doc.Issue)
			}
		}
		if doc.Pages != "" {
			b.WriteString(", ")
			b.WriteString(doc.Pages)
		}
		b.WriteString(". ")
	}
	if doc.DOI != "" {
		fmt.Fprintf(&b, "https://doi.org/%s", doc.DOI)
	}

	return strings.TrimSpace(b.String())
}

// References renders the final bibliography, one entry per document in
// marker order.
func References(docs []types.RetrievedDocument) []types.FinalCitation {
	out := make([]types.FinalCitation, 0, len(docs))
	for i, doc := range docs {
		out = append(out, types.FinalCitation{
			Marker:      i + 1,
			Text:        APA(doc),
			DocumentKey: doc.CanonicalKey,
		})
	}
	return out
}

// formatAuthors applies the APA author-list rules: one name as-is, two
// joined with "&", three to twenty comma-separated with "&" before the
// last, beyond twenty the first nineteen plus "et al.".
func formatAuthors(names []string) string {
	formatted := make([]string, 0, len(names))
	for _, n := range names {
		if f := FormatName(n); f != "" {
			formatted = append(formatted, f)
		}
	}
	switch {
	case len(formatted) == 0:
		return ""
	case len(formatted) == 1:
		return formatted[0]
	case len(formatted) == 2:
		return formatted[0] + " & " + formatted[1]
	case len(formatted) <= maxListedAuthors:
		return strings.Join(formatted[:len(formatted)-1], ", ") + " & " + formatted[len(formatted)-1]
	default:
		return strings.Join(formatted[:maxListedAuthors-1], ", ") + ", et al."
	}
}

// collectiveMarkers identify group authors, which are never inverted.
var collectiveMarkers = map[string]bool{
	"group":         true,
	"consortium":    true,
	"collaboration": true,
	"committee":     true,
	"investigators": true,
	"network":       true,
	"team":          true,
	"society":       true,
	"study":         true,
}

// FormatName converts an author name to "Last, F." form. Already-inverted
// names and collective names pass through; "Given Family" and "Family I"
// source forms are inverted.
func FormatName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.Contains(name, ",") {
		return name
	}

	fields := strings.Fields(name)
	for _, f := range fields {
		if collectiveMarkers[strings.ToLower(f)] {
			return name
		}
	}
	if len(fields) == 1 {
		return name
	}

	last := fields[len(fields)-1]
	if isInitials(last) {
		// "Lee H" form: family name first, initials last.
		return fields[0] + ", " + dotInitials(last)
	}

	// "Jane Smith" form: given names first, family name last.
	var initials []string
	for _, given := range fields[:len(fields)-1] {
		r := []rune(given)
		if len(r) == 0 {
			continue
		}
		initials = append(initials, string(unicode.ToUpper(r[0]))+".")
	}
	return last + ", " + strings.Join(initials, " ")
}

// isInitials reports whether a token is one or two upper-case letters,
// optionally dotted.
func isInitials(s string) bool {
	s = strings.ReplaceAll(s, ".", "")
	if len(s) == 0 || len(s) > 2 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// dotInitials renders "HJ" as "H. J.".
func dotInitials(s string) string {
	s = strings.ReplaceAll(s, ".", "")
	parts := make([]string, 0, len(s))
	for _, r := range s {
		parts = append(parts, string(r)+".")
	}
	return strings.Join(parts, " ")
}

// TitleCase capitalizes every word except minor words, which stay
// lowercase unless they open the title.
func TitleCase(title string) string {
	words := strings.Fields(title)
	for i, w := range words {
		lower := strings.ToLower(w)
		if i > 0 && minorWords[stripPunct(lower)] {
			words[i] = lower
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// stripPunct trims leading and trailing punctuation for minor-word
// matching.
func stripPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// capitalize upper-cases the first letter, leaving the rest of the word
// untouched so acronyms and gene names survive.
func capitalize(w string) string {
	r := []rune(w)
	for i, c := range r {
		if unicode.IsLetter(c) {
			r[i] = unicode.ToUpper(c)
			break
		}
	}
	return string(r)
}
