// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"regexp"
	"strings"
)

// IdentifierType classifies a bibliographic identifier.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeDOI
	TypePMID
	TypePMCID
)

func (t IdentifierType) String() string {
	switch t {
	case TypeDOI:
		return "doi"
	case TypePMID:
		return "pmid"
	case TypePMCID:
		return "pmcid"
	default:
		return "unknown"
	}
}

// doiPattern matches a bare DOI: "10.1001/jama.2023.1234".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// pmidPattern matches a PubMed id, digits only.
var pmidPattern = regexp.MustCompile(`^\d{1,9}$`)

// pmcidPattern matches a PubMed Central id: "PMC1234567".
var pmcidPattern = regexp.MustCompile(`^(?i:PMC)(\d{1,8})$`)

// doiScanPattern finds a DOI embedded in free text, e.g. an abstract's
// trailing "doi: 10.1001/...." line. Trailing punctuation is trimmed by
// the caller.
var doiScanPattern = regexp.MustCompile(`\b10\.\d{4,9}/[^\s"'<>]+`)

// Classify determines the identifier type and returns the normalized form:
// DOIs are lowercased with scheme/resolver prefixes stripped, PMCIDs are
// upper-cased with the PMC prefix.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if d := NormalizeDOI(identifier); d != "" {
		return TypeDOI, d
	}
	if pmidPattern.MatchString(identifier) {
		return TypePMID, identifier
	}
	if m := pmcidPattern.FindStringSubmatch(identifier); m != nil {
		return TypePMCID, "PMC" + m[1]
	}
	return TypeUnknown, identifier
}

// NormalizeDOI strips scheme and resolver prefixes, lowercases, and
// validates the result. Returns "" if the input is not a DOI.
func NormalizeDOI(raw string) string {
	d := strings.TrimSpace(raw)
	d = strings.TrimPrefix(d, "https://doi.org/")
	d = strings.TrimPrefix(d, "http://doi.org/")
	d = strings.TrimPrefix(d, "https://dx.doi.org/")
	d = strings.TrimPrefix(d, "http://dx.doi.org/")
	if len(d) > 4 && strings.EqualFold(d[:4], "doi:") {
		d = d[4:]
	}
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimRight(d, ".,;")
	if !doiPattern.MatchString(d) {
		return ""
	}
	return d
}

// doiStrategy is one step in the ordered DOI extraction chain. It returns
// the normalized DOI and true on success.
type doiStrategy func() (string, bool)

// ExtractDOI runs the extraction chain over a record's fields: the primary
// identifier field first, then the alternate identifier list, then a scan
// of the abstract. The chain short-circuits at the first success.
func ExtractDOI(primary string, alternates []string, abstract string) string {
	strategies := []doiStrategy{
		func() (string, bool) {
			d := NormalizeDOI(primary)
			return d, d != ""
		},
		func() (string, bool) {
			for _, alt := range alternates {
				if d := NormalizeDOI(alt); d != "" {
					return d, true
				}
			}
			return "", false
		},
		func() (string, bool) {
			m := doiScanPattern.FindString(abstract)
			if m == "" {
				return "", false
			}
			d := NormalizeDOI(m)
			return d, d != ""
		},
	}

	for _, s := range strategies {
		if d, ok := s(); ok {
			return d
		}
	}
	return ""
}
