// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk splits document abstracts into fixed-size sentence groups
// with stable anchors, so downstream citation mappings can point back into
// source text. Chunking is deterministic and side-effect-free.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

const defaultSentencesPerChunk = 3

// sectionLabels maps abstract section labels, as emitted by the source
// adapters, onto the common section names. Matched by prefix after
// lowercasing.
var sectionLabels = map[string]types.ChunkSection{
	"methods":      types.SectionMethods,
	"method":       types.SectionMethods,
	"design":       types.SectionMethods,
	"results":      types.SectionResults,
	"result":       types.SectionResults,
	"findings":     types.SectionResults,
	"discussion":   types.SectionDiscussion,
	"conclusion":   types.SectionDiscussion,
	"conclusions":  types.SectionDiscussion,
	"implications": types.SectionDiscussion,
}

// Build cuts every document's abstract into sentence groups and assigns
// anchors and entity tags. Documents without abstract text contribute no
// chunks.
func Build(docs []types.RetrievedDocument, cfg types.ChunkConfig, vocab Vocabulary) []types.EvidenceChunk {
	size := cfg.SentencesPerChunk
	if size <= 0 {
		size = defaultSentencesPerChunk
	}
	if vocab == nil {
		vocab = DefaultClinicalVocabulary
	}

	var chunks []types.EvidenceChunk
	for _, doc := range docs {
		chunks = append(chunks, buildDocument(doc, size, vocab)...)
	}
	return chunks
}

// buildDocument chunks a single document. Labeled abstract sections keep
// their own section tag; unlabeled text is tagged abstract.
func buildDocument(doc types.RetrievedDocument, size int, vocab Vocabulary) []types.EvidenceChunk {
	var chunks []types.EvidenceChunk
	pos := 0
	for _, seg := range splitSections(doc.Abstract) {
		sentences := SplitSentences(seg.text)
		for start := 0; start < len(sentences); start += size {
			end := start + size
			if end > len(sentences) {
				end = len(sentences)
			}
			text := strings.Join(sentences[start:end], " ")
			chunks = append(chunks, types.EvidenceChunk{
				Text:              text,
				Section:           seg.section,
				ParagraphIndex:    pos,
				AnchorID:          AnchorID(text, doc.CanonicalKey, pos),
				EntityTags:        vocab.Tags(text),
				SourceDocumentKey: doc.CanonicalKey,
			})
			pos++
		}
	}
	return chunks
}

// AnchorID derives the stable chunk identifier from content and position.
func AnchorID(text, documentKey string, position int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", text, documentKey, position)))
	return hex.EncodeToString(sum[:])[:16]
}

type section struct {
	section types.ChunkSection
	text    string
}

// splitSections walks the abstract line by line, switching sections when a
// line opens with a known "Label:" prefix. Adapters emit structured
// abstracts in that form.
func splitSections(abstract string) []section {
	abstract = strings.TrimSpace(abstract)
	if abstract == "" {
		return nil
	}

	var out []section
	current := section{section: types.SectionAbstract}
	flush := func() {
		if strings.TrimSpace(current.text) != "" {
			current.text = strings.TrimSpace(current.text)
			out = append(out, current)
		}
	}

	for _, line := range strings.Split(abstract, "\n") {
		label, rest, ok := splitLabel(line)
		if ok {
			flush()
			current = section{section: label, text: rest}
			continue
		}
		if current.text != "" {
			current.text += " "
		}
		current.text += strings.TrimSpace(line)
	}
	flush()
	return out
}

// splitLabel recognizes a leading "LABEL: text" form and maps the label to
// a section. Unknown labels fold into the abstract section, keeping the
// text.
func splitLabel(line string) (types.ChunkSection, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 || idx > 32 {
		return "", "", false
	}
	label := strings.ToLower(strings.TrimSpace(line[:idx]))
	if label == "" || strings.ContainsAny(label, ".;,") {
		return "", "", false
	}
	rest := strings.TrimSpace(line[idx+1:])
	for prefix, sec := range sectionLabels {
		if strings.HasPrefix(label, prefix) {
			return sec, rest, true
		}
	}
	// Labeled but unmapped sections (BACKGROUND, OBJECTIVE) stay abstract.
	if isAllLabelWords(label) {
		return types.SectionAbstract, rest, true
	}
	return "", "", false
}

// isAllLabelWords reports whether the candidate label looks like a section
// heading rather than prose that happens to contain a colon.
func isAllLabelWords(label string) bool {
	words := strings.Fields(label)
	if len(words) == 0 || len(words) > 3 {
		return false
	}
	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) && r != '/' && r != '-' {
				return false
			}
		}
	}
	return true
}

// abbreviations that end with a period but do not end a sentence.
var abbreviations = map[string]bool{
	"vs":     true,
	"et":     true,
	"al":     true,
	"e.g":    true,
	"i.e":    true,
	"fig":    true,
	"dr":     true,
	"no":     true,
	"ca":     true,
	"approx": true,
}

// SplitSentences cuts text into sentences on terminal punctuation followed
// by whitespace and an upper-case or numeric start. Common abbreviations
// and decimal numbers do not split.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var sentences []string
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 >= len(runes) {
			break
		}
		// Decimal point.
		if r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		// Whitespace then a capital or digit opens the next sentence.
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 || j >= len(runes) {
			continue
		}
		if !unicode.IsUpper(runes[j]) && !unicode.IsDigit(runes[j]) {
			continue
		}
		if r == '.' && isAbbreviation(string(runes[start:i])) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j - 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// isAbbreviation checks the final word before a period against the
// abbreviation table.
func isAbbreviation(prefix string) bool {
	fields := strings.Fields(prefix)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(strings.Trim(fields[len(fields)-1], "()[]"))
	last = strings.TrimSuffix(last, ".")
	return abbreviations[last]
}
