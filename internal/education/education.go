// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package education looks up consumer-health material for a topic via the
// MedlinePlus web service. Enrichment is optional; lookup failures never
// fail a pipeline run.
package education

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// medlinePlusBase is the MedlinePlus web-service endpoint. Declared as a
// var so tests can substitute an httptest server.
var medlinePlusBase = "https://wsearch.nlm.nih.gov/ws/query"

// maxResources caps the enrichment entries returned per lookup.
const maxResources = 3

// Client queries the MedlinePlus health-topic search service.
type Client struct {
	Client *http.Client
	Config types.EducationConfig
	Logger *slog.Logger
}

// NewClient wires a lookup client from the education configuration.
func NewClient(cfg types.EducationConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		Client: &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
		Logger: logger,
	}
}

// Lookup returns up to three patient-education resources for the topic.
func (c *Client) Lookup(ctx context.Context, topic string) ([]types.EducationResource, error) {
	if topic == "" {
		return nil, fmt.Errorf("empty education topic")
	}

	params := url.Values{
		"db":      {"healthTopics"},
		"term":    {topic},
		"rettype": {"brief"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, medlinePlusBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("MedlinePlus lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("MedlinePlus returned HTTP %d", resp.StatusCode)
	}

	var mr medlinePlusResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("parsing MedlinePlus response: %w", err)
	}

	var resources []types.EducationResource
	for _, doc := range mr.List.Documents {
		res := types.EducationResource{URL: doc.URL}
		for _, f := range doc.Content {
			switch f.Name {
			case "title":
				res.Title = f.Value
			case "FullSummary", "snippet":
				if res.Summary == "" {
					res.Summary = f.Value
				}
			}
		}
		if res.Title == "" {
			continue
		}
		resources = append(resources, res)
		if len(resources) == maxResources {
			break
		}
	}
	return resources, nil
}

// --- MedlinePlus JSON structures ---

type medlinePlusResponse struct {
	List struct {
		Documents []struct {
			URL     string `json:"url"`
			Content []struct {
				Name  string `json:"name"`
				Value string `json:"content"`
			} `json:"content"`
		} `json:"document"`
	} `json:"list"`
}
