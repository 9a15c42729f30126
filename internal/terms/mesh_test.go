// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package terms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

func TestMeshClientNormalize(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("label"); got != "knee pain" {
			t.Errorf("label = %q, want %q", got, "knee pain")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"resource": "http://id.nlm.nih.gov/mesh/D018771", "label": "Arthralgia"},
			{"resource": "http://id.nlm.nih.gov/mesh/D059352", "label": "Musculoskeletal Pain"},
			{"resource": "http://id.nlm.nih.gov/mesh/D010146", "label": "Pain"}
		]`))
	}))
	defer ts.Close()

	oldBase := meshLookupBase
	meshLookupBase = ts.URL
	defer func() { meshLookupBase = oldBase }()

	c := &MeshClient{Client: ts.Client(), Config: types.TermsConfig{MaxSynonyms: 3}}
	norm, err := c.Normalize(context.Background(), "knee pain")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if norm.CanonicalTerm != "Arthralgia" {
		t.Errorf("CanonicalTerm = %q, want Arthralgia", norm.CanonicalTerm)
	}
	if len(norm.Synonyms) != 2 {
		t.Fatalf("len(Synonyms) = %d, want 2", len(norm.Synonyms))
	}
	if len(norm.TreePath) != 1 || norm.TreePath[0] != "D018771" {
		t.Errorf("TreePath = %v, want [D018771]", norm.TreePath)
	}
}

func TestMeshClientNoMatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	oldBase := meshLookupBase
	meshLookupBase = ts.URL
	defer func() { meshLookupBase = oldBase }()

	c := &MeshClient{Client: ts.Client()}
	if _, err := c.Normalize(context.Background(), "zzz unmatched"); err == nil {
		t.Fatal("expected error for empty descriptor list")
	}
}

func TestMeshClientServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	oldBase := meshLookupBase
	meshLookupBase = ts.URL
	defer func() { meshLookupBase = oldBase }()

	c := &MeshClient{Client: ts.Client()}
	if _, err := c.Normalize(context.Background(), "pain"); err == nil {
		t.Fatal("expected error for HTTP 403")
	}
}

func TestDescriptorID(t *testing.T) {
	tests := []struct {
		resource string
		want     string
	}{
		{"http://id.nlm.nih.gov/mesh/D009784", "D009784"},
		{"no-slash", ""},
		{"trailing/", ""},
	}
	for _, tt := range tests {
		if got := descriptorID(tt.resource); got != tt.want {
			t.Errorf("descriptorID(%q) = %q, want %q", tt.resource, got, tt.want)
		}
	}
}
