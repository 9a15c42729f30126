// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package terms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// meshLookupBase is the NLM MeSH lookup endpoint. Declared as a var so
// tests can substitute an httptest server.
var meshLookupBase = "https://id.nlm.nih.gov/mesh/lookup/descriptor"

// Normalization is the vocabulary service's view of a free-text term.
type Normalization struct {
	// CanonicalTerm is the preferred MeSH descriptor label.
	CanonicalTerm string `json:"canonical_term"`

	// Synonyms lists entry terms and close matches, best first.
	Synonyms []string `json:"synonyms,omitempty"`

	// TreePath is the descriptor's position in the MeSH hierarchy.
	TreePath []string `json:"tree_path,omitempty"`

	// Specialty is the clinical specialty associated with the
	// descriptor, when one can be inferred from the tree.
	Specialty string `json:"specialty,omitempty"`
}

// Normalizer is the vocabulary normalization port.
type Normalizer interface {
	Normalize(ctx context.Context, text string) (Normalization, error)
}

// MeshClient queries the NLM MeSH lookup service.
type MeshClient struct {
	Client *http.Client
	Config types.TermsConfig
}

// meshDescriptor is one entry of the lookup response.
type meshDescriptor struct {
	Resource string `json:"resource"`
	Label    string `json:"label"`
}

// Normalize resolves text to a canonical MeSH descriptor plus close
// matches. The first exact-or-best match becomes the canonical term; the
// remaining matches are returned as synonyms.
func (c *MeshClient) Normalize(ctx context.Context, text string) (Normalization, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Normalization{}, fmt.Errorf("empty term")
	}

	limit := c.Config.MaxSynonyms + 1
	if limit < 2 {
		limit = 4
	}

	params := url.Values{
		"label": {text},
		"match": {"contains"},
		"limit": {fmt.Sprintf("%d", limit)},
	}
	reqURL := meshLookupBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Normalization{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Config.UserAgent)
	req.Header.Set("Accept", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 2)
	if err != nil {
		return Normalization{}, fmt.Errorf("MeSH lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Normalization{}, fmt.Errorf("MeSH lookup returned HTTP %d", resp.StatusCode)
	}

	var descriptors []meshDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&descriptors); err != nil {
		return Normalization{}, fmt.Errorf("parsing MeSH response: %w", err)
	}
	if len(descriptors) == 0 {
		return Normalization{}, fmt.Errorf("no MeSH descriptor for %q", text)
	}

	norm := Normalization{CanonicalTerm: descriptors[0].Label}
	for _, d := range descriptors[1:] {
		if d.Label != "" && !strings.EqualFold(d.Label, norm.CanonicalTerm) {
			norm.Synonyms = append(norm.Synonyms, d.Label)
		}
	}
	if id := descriptorID(descriptors[0].Resource); id != "" {
		norm.TreePath = []string{id}
	}
	return norm, nil
}

// descriptorID extracts the trailing descriptor ID from a MeSH resource
// URI like "http://id.nlm.nih.gov/mesh/D009784".
func descriptorID(resource string) string {
	idx := strings.LastIndex(resource, "/")
	if idx < 0 || idx == len(resource)-1 {
		return ""
	}
	return resource[idx+1:]
}
