// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/internal/ratelimit"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// europePMCBase is the Europe PMC REST search endpoint. Declared as a var
// so tests can substitute an httptest server.
var europePMCBase = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

// EuropePMCSource queries the Europe PMC REST API. Search uses the idlist
// result type; Fetch re-queries by external id with the core result type.
type EuropePMCSource struct {
	Client  *http.Client
	Config  types.SourceConfig
	Limiter *ratelimit.Limiter
	Logger  *slog.Logger
}

// NewEuropePMCSource wires a source with its own rate budget.
func NewEuropePMCSource(cfg types.SourceConfig, logger *slog.Logger) *EuropePMCSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &EuropePMCSource{
		Client:  &http.Client{Timeout: cfg.Timeout},
		Config:  cfg,
		Limiter: ratelimit.New(cfg.RequestsPerSecond),
		Logger:  logger,
	}
}

// Name returns the source identifier.
func (s *EuropePMCSource) Name() string { return "europepmc" }

func (s *EuropePMCSource) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := s.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		s.Limiter.Failure()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		s.Limiter.Failure()
		resp.Body.Close()
		return nil, fmt.Errorf("Europe PMC API returned HTTP %d", resp.StatusCode)
	}
	s.Limiter.Success()
	return resp, nil
}

func (s *EuropePMCSource) query(ctx context.Context, expr, resultType string, pageSize int) (*europePMCResponse, error) {
	params := url.Values{
		"query":      {expr},
		"format":     {"json"},
		"resultType": {resultType},
		"pageSize":   {strconv.Itoa(pageSize)},
	}
	if s.Config.Email != "" {
		params.Set("email", s.Config.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, europePMCBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.Config.UserAgent)

	resp, err := s.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var er europePMCResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing Europe PMC response: %w", err)
	}
	return &er, nil
}

// Search builds the source-native boolean expression, including year range
// filters, and returns external ids.
func (s *EuropePMCSource) Search(ctx context.Context, terms []types.TermQuery, filters types.ReviewFilters) ([]string, error) {
	expr := buildBooleanQuery(terms, func(t string) string {
		return `"` + t + `"`
	})
	if expr == "" {
		return nil, fmt.Errorf("empty Europe PMC query")
	}

	if filters.YearFrom > 0 || filters.YearTo > 0 {
		from, to := filters.YearFrom, filters.YearTo
		if from <= 0 {
			from = 1900
		}
		if to <= 0 {
			to = 3000
		}
		expr = fmt.Sprintf("%s AND PUB_YEAR:[%d TO %d]", expr, from, to)
	}

	maxResults := s.Config.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	er, err := s.query(ctx, expr, "idlist", maxResults)
	if err != nil {
		return nil, fmt.Errorf("Europe PMC search: %w", err)
	}

	var ids []string
	for _, r := range er.ResultList.Results {
		if r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

// Fetch resolves external ids into full records using the core result
// type. Malformed records are skipped and logged.
func (s *EuropePMCSource) Fetch(ctx context.Context, ids []string) (FetchResult, error) {
	if len(ids) == 0 {
		return FetchResult{}, nil
	}

	clauses := make([]string, len(ids))
	for i, id := range ids {
		clauses[i] = "EXT_ID:" + id
	}
	expr := strings.Join(clauses, " OR ")

	er, err := s.query(ctx, expr, "core", len(ids))
	if err != nil {
		return FetchResult{}, fmt.Errorf("Europe PMC fetch: %w", err)
	}

	// Preserve the relevance order from the original search.
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}

	total := len(ids)
	var out FetchResult
	for _, rec := range er.ResultList.Results {
		doc, err := s.normalize(rec)
		if err != nil {
			s.Logger.Warn("skipping malformed Europe PMC record",
				"id", rec.ID, "error", err)
			out.Skipped++
			continue
		}
		pos, ok := rank[rec.ID]
		if !ok {
			pos = total - 1
		}
		if total > 1 {
			doc.RetrievalScore = 1.0 - float64(pos)/float64(total-1)*0.9
		} else {
			doc.RetrievalScore = 1.0
		}
		out.Documents = append(out.Documents, doc)
	}
	return out, nil
}

// normalize maps one Europe PMC core record onto the common schema.
func (s *EuropePMCSource) normalize(rec europePMCResult) (types.RetrievedDocument, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return types.RetrievedDocument{}, fmt.Errorf("record has no title")
	}

	doc := types.RetrievedDocument{
		Title:        title,
		PMID:         strings.TrimSpace(rec.PMID),
		PMCID:        strings.TrimSpace(rec.PMCID),
		Journal:      rec.JournalInfo.Journal.Title,
		Volume:       rec.JournalInfo.Volume,
		Issue:        rec.JournalInfo.Issue,
		Pages:        rec.PageInfo,
		Abstract:     strings.TrimSpace(rec.AbstractText),
		Source:       "europepmc",
		IsOpenAccess: rec.IsOpenAccess == "Y",
		HasFullText:  rec.InEPMC == "Y" || rec.IsOpenAccess == "Y",
	}

	// authorString is "A, B, C."; the list field is preferred when present.
	for _, a := range rec.AuthorList.Authors {
		if a.FullName != "" {
			doc.Authors = append(doc.Authors, a.FullName)
		}
	}
	if len(doc.Authors) == 0 && rec.AuthorString != "" {
		for _, a := range strings.Split(strings.TrimSuffix(rec.AuthorString, "."), ",") {
			if name := strings.TrimSpace(a); name != "" {
				doc.Authors = append(doc.Authors, name)
			}
		}
	}

	if y, err := strconv.Atoi(rec.PubYear); err == nil {
		doc.Year = y
	}

	doc.StudyType = ClassifyStudyType(rec.PubTypeList.PubTypes, nil)
	doc.EvidenceLevel = EvidenceLevelFor(doc.StudyType)

	doc.DOI = ExtractDOI(rec.DOI, rec.FullTextIDList.IDs, doc.Abstract)

	return doc, nil
}

// --- Europe PMC JSON structures ---

type europePMCResponse struct {
	HitCount   int `json:"hitCount"`
	ResultList struct {
		Results []europePMCResult `json:"result"`
	} `json:"resultList"`
}

type europePMCResult struct {
	ID           string `json:"id"`
	PMID         string `json:"pmid"`
	PMCID        string `json:"pmcid"`
	DOI          string `json:"doi"`
	Title        string `json:"title"`
	AuthorString string `json:"authorString"`
	AuthorList   struct {
		Authors []struct {
			FullName string `json:"fullName"`
		} `json:"author"`
	} `json:"authorList"`
	JournalInfo struct {
		Volume  string `json:"volume"`
		Issue   string `json:"issue"`
		Journal struct {
			Title string `json:"title"`
		} `json:"journal"`
	} `json:"journalInfo"`
	PageInfo     string `json:"pageInfo"`
	PubYear      string `json:"pubYear"`
	AbstractText string `json:"abstractText"`
	PubTypeList  struct {
		PubTypes []string `json:"pubType"`
	} `json:"pubTypeList"`
	IsOpenAccess   string `json:"isOpenAccess"`
	InEPMC         string `json:"inEPMC"`
	FullTextIDList struct {
		IDs []string `json:"fullTextId"`
	} `json:"fullTextIdList"`
}
