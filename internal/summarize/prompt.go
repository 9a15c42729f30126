// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// summaryPromptTmpl instructs the generative service to produce the
// six-section clinical summary with inline numbered markers. The contract
// is validated by Parse; non-conforming output is rejected and retried.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are a clinical evidence summarization system. Write an evidence summary for the query below, using ONLY the numbered source excerpts provided. Do not introduce facts that are not present in the excerpts.

Output contract, to be followed exactly:
- Exactly six sections with these Markdown headings, in this order:
  ## Introduction, ## Evaluation, ## Diagnosis, ## Treatment, ## Closing, ## References
- Body length between {{.MinWords}} and {{.MaxWords}} words (References excluded).
- Every clinically asserted fact carries one or two inline numbered markers like [1] or [1][3], referring to the sources below.
- Where supporting data is thin or conflicting, label the statement non-conclusive, for example: "evidence remains non-conclusive [2]".
- The References section is a numbered list, one source per line, in the form "N. Reference text". No bullets. List exactly the numbers used as markers in the body, each exactly once.
- No text outside the six sections.

Query: {{.Query}}

Sources:
{{.Sources}}
`))

type promptData struct {
	Query    string
	Sources  string
	MinWords int
	MaxWords int
}

// renderPrompt formats the chunk set as numbered source excerpts, one
// marker per document, and fills the prompt template. Marker numbers
// follow document order.
func renderPrompt(query string, docs []types.RetrievedDocument, chunks []types.EvidenceChunk, cfg types.SummaryConfig) (string, error) {
	var b strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&b, "[%d] %s (%s, %d)", i+1, doc.Title, strings.Join(doc.Authors, "; "), doc.Year)
		if doc.DOI != "" {
			fmt.Fprintf(&b, " doi:%s", doc.DOI)
		}
		b.WriteString("\n")
		for _, c := range chunks {
			if c.SourceDocumentKey != doc.CanonicalKey {
				continue
			}
			fmt.Fprintf(&b, "    (%s) %s\n", c.Section, c.Text)
		}
	}

	minWords, maxWords := cfg.MinWords, cfg.MaxWords
	if minWords <= 0 {
		minWords = 250
	}
	if maxWords <= 0 {
		maxWords = 600
	}

	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, promptData{
		Query:    query,
		Sources:  b.String(),
		MinWords: minWords,
		MaxWords: maxWords,
	})
	if err != nil {
		return "", fmt.Errorf("rendering summary prompt: %w", err)
	}
	return buf.String(), nil
}
