// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
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

// eUtils endpoints. Declared as vars so tests can substitute httptest
// servers.
var (
	pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// PubMedSource queries NCBI eUtils: esearch for ids, efetch for records.
type PubMedSource struct {
	Client  *http.Client
	Config  types.SourceConfig
	Limiter *ratelimit.Limiter
	Logger  *slog.Logger
}

// NewPubMedSource wires a source with its own rate budget.
func NewPubMedSource(cfg types.SourceConfig, logger *slog.Logger) *PubMedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PubMedSource{
		Client:  &http.Client{Timeout: cfg.Timeout},
		Config:  cfg,
		Limiter: ratelimit.New(cfg.RequestsPerSecond),
		Logger:  logger,
	}
}

// Name returns the source identifier.
func (s *PubMedSource) Name() string { return "pubmed" }

// do waits on the rate budget and executes the request with retry,
// recording success or failure on the backoff state machine.
func (s *PubMedSource) do(ctx context.Context, req *http.Request) (*http.Response, error) {
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
		return nil, fmt.Errorf("PubMed API returned HTTP %d", resp.StatusCode)
	}
	s.Limiter.Success()
	return resp, nil
}

// Search runs esearch over the combined boolean term expression and
// returns PMIDs.
func (s *PubMedSource) Search(ctx context.Context, terms []types.TermQuery, filters types.ReviewFilters) ([]string, error) {
	expr := buildBooleanQuery(terms, func(t string) string {
		return `"` + t + `"`
	})
	if expr == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}

	maxResults := s.Config.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {expr},
		"retmax":  {strconv.Itoa(maxResults)},
		"retmode": {"json"},
		"sort":    {"relevance"},
	}
	if filters.YearFrom > 0 {
		params.Set("mindate", strconv.Itoa(filters.YearFrom))
		params.Set("datetype", "pdat")
	}
	if filters.YearTo > 0 {
		params.Set("maxdate", strconv.Itoa(filters.YearTo))
		params.Set("datetype", "pdat")
	}
	if s.Config.APIKey != "" {
		params.Set("api_key", s.Config.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.Config.UserAgent)

	resp, err := s.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("PubMed search: %w", err)
	}
	defer resp.Body.Close()

	var sr pubmedSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing PubMed search response: %w", err)
	}
	return sr.ESearchResult.IDList, nil
}

// Fetch runs efetch over the id batch and normalizes the XML records.
// Malformed records are skipped and logged, never fatal for the batch.
func (s *PubMedSource) Fetch(ctx context.Context, ids []string) (FetchResult, error) {
	if len(ids) == 0 {
		return FetchResult{}, nil
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	if s.Config.APIKey != "" {
		params.Set("api_key", s.Config.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedFetchBase+"?"+params.Encode(), nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.Config.UserAgent)

	resp, err := s.do(ctx, req)
	if err != nil {
		return FetchResult{}, fmt.Errorf("PubMed fetch: %w", err)
	}
	defer resp.Body.Close()

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return FetchResult{}, fmt.Errorf("parsing PubMed fetch response: %w", err)
	}

	total := len(set.Articles)
	var out FetchResult
	for i, art := range set.Articles {
		doc, err := s.normalize(art)
		if err != nil {
			s.Logger.Warn("skipping malformed PubMed record",
				"pmid", art.MedlineCitation.PMID, "error", err)
			out.Skipped++
			continue
		}
		// Position-based relevance; esearch returns relevance order.
		if total > 1 {
			doc.RetrievalScore = 1.0 - float64(i)/float64(total-1)*0.9
		} else {
			doc.RetrievalScore = 1.0
		}
		out.Documents = append(out.Documents, doc)
	}
	return out, nil
}

// normalize maps one PubmedArticle onto the common schema.
func (s *PubMedSource) normalize(art pubmedArticle) (types.RetrievedDocument, error) {
	a := art.MedlineCitation.Article
	title := strings.TrimSpace(a.ArticleTitle)
	if title == "" {
		return types.RetrievedDocument{}, fmt.Errorf("record has no title")
	}

	doc := types.RetrievedDocument{
		Title:   title,
		PMID:    strings.TrimSpace(art.MedlineCitation.PMID),
		Journal: strings.TrimSpace(a.Journal.Title),
		Volume:  a.Journal.JournalIssue.Volume,
		Issue:   a.Journal.JournalIssue.Issue,
		Pages:   a.Pagination.MedlinePgn,
		Source:  "pubmed",
	}

	for _, au := range a.AuthorList.Authors {
		name := strings.TrimSpace(strings.TrimSpace(au.ForeName) + " " + strings.TrimSpace(au.LastName))
		if au.CollectiveName != "" {
			name = strings.TrimSpace(au.CollectiveName)
		}
		if name != "" {
			doc.Authors = append(doc.Authors, name)
		}
	}

	if y, err := strconv.Atoi(a.Journal.JournalIssue.PubDate.Year); err == nil {
		doc.Year = y
	}

	// Structured abstracts keep their section labels so the chunker can
	// assign sections downstream.
	var parts []string
	for _, ab := range a.Abstract.Sections {
		text := strings.TrimSpace(ab.Text)
		if text == "" {
			continue
		}
		if ab.Label != "" {
			parts = append(parts, ab.Label+": "+text)
		} else {
			parts = append(parts, text)
		}
	}
	doc.Abstract = strings.Join(parts, "\n")

	doc.StudyType = ClassifyStudyType(a.PublicationTypeList.Types, nil)
	doc.EvidenceLevel = EvidenceLevelFor(doc.StudyType)

	// DOI extraction chain: ELocationID, then the ArticleId list, then
	// the abstract text.
	var alternates []string
	for _, el := range a.ELocationIDs {
		if strings.EqualFold(el.EIdType, "doi") {
			alternates = append(alternates, el.Value)
		}
	}
	primary := ""
	for _, aid := range art.PubmedData.ArticleIDs.IDs {
		switch strings.ToLower(aid.IdType) {
		case "doi":
			primary = aid.Value
		case "pmc":
			doc.PMCID = strings.TrimSpace(aid.Value)
		}
	}
	doc.DOI = ExtractDOI(primary, alternates, doc.Abstract)

	// A PMC deposit implies retrievable full text.
	doc.HasFullText = doc.PMCID != ""
	doc.IsOpenAccess = doc.PMCID != ""

	return doc, nil
}

// --- eUtils JSON/XML structures ---

type pubmedSearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			ArticleTitle string `xml:"ArticleTitle"`
			Journal      struct {
				Title        string `xml:"Title"`
				JournalIssue struct {
					Volume  string `xml:"Volume"`
					Issue   string `xml:"Issue"`
					PubDate struct {
						Year string `xml:"Year"`
					} `xml:"PubDate"`
				} `xml:"JournalIssue"`
			} `xml:"Journal"`
			Abstract struct {
				Sections []struct {
					Label string `xml:"Label,attr"`
					Text  string `xml:",chardata"`
				} `xml:"AbstractText"`
			} `xml:"Abstract"`
			AuthorList struct {
				Authors []struct {
					LastName       string `xml:"LastName"`
					ForeName       string `xml:"ForeName"`
					CollectiveName string `xml:"CollectiveName"`
				} `xml:"Author"`
			} `xml:"AuthorList"`
			Pagination struct {
				MedlinePgn string `xml:"MedlinePgn"`
			} `xml:"Pagination"`
			ELocationIDs []struct {
				EIdType string `xml:"EIdType,attr"`
				Value   string `xml:",chardata"`
			} `xml:"ELocationID"`
			PublicationTypeList struct {
				Types []string `xml:"PublicationType"`
			} `xml:"PublicationTypeList"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
	PubmedData struct {
		ArticleIDs struct {
			IDs []struct {
				IdType string `xml:"IdType,attr"`
				Value  string `xml:",chardata"`
			} `xml:"ArticleId"`
		} `xml:"ArticleIdList"`
	} `xml:"PubmedData"`
}
