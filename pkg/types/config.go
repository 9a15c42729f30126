// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "evidence-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig holds settings for one literature source adapter.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// Enabled controls whether the source participates in retrieval.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// RequestsPerSecond is the outbound rate budget (default 3).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// APIKey is an optional key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email is sent to sources that offer a polite pool for identified
	// clients.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// MaxResults caps the number of ids requested per search.
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// SearchConfig holds settings for the retrieval stage.
type SearchConfig struct {
	// PubMed and EuropePMC configure the two source adapters.
	PubMed    SourceConfig `json:"pubmed" yaml:"pubmed"`
	EuropePMC SourceConfig `json:"europepmc" yaml:"europepmc"`
}

// TermsConfig holds settings for the term generation stage.
type TermsConfig struct {
	HTTPConfig `yaml:",inline"`

	// MeshLookupEnabled controls whether the vocabulary normalization
	// service is consulted. Generation proceeds without it on failure.
	MeshLookupEnabled bool `json:"mesh_lookup_enabled" yaml:"mesh_lookup_enabled"`

	// MaxSynonyms bounds the expanded synonyms added per hint (default 3).
	MaxSynonyms int `json:"max_synonyms" yaml:"max_synonyms"`
}

// ChunkConfig holds settings for the chunking stage.
type ChunkConfig struct {
	// SentencesPerChunk is the fixed sentence-group size (default 3).
	SentencesPerChunk int `json:"sentences_per_chunk" yaml:"sentences_per_chunk"`
}

// SummaryConfig holds settings for the summarization stage.
type SummaryConfig struct {
	// Model is the generative model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the generative service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the generative service endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of generation attempts before falling
	// back to the extractive summary (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MinWords and MaxWords bound the summary body length
	// (defaults 250 and 600).
	MinWords int `json:"min_words" yaml:"min_words"`
	MaxWords int `json:"max_words" yaml:"max_words"`
}

// VerifyConfig holds settings for the factual verification stage.
type VerifyConfig struct {
	// SimThreshold is the minimum token-set similarity for a chunk to
	// support a sentence (default 0.65). One threshold governs every
	// support decision.
	SimThreshold float64 `json:"sim_threshold" yaml:"sim_threshold"`

	// TopK is the maximum number of supporting chunks kept per sentence
	// (default 3).
	TopK int `json:"top_k" yaml:"top_k"`

	// Workers sizes the verification worker pool (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// CacheConfig holds settings for the query result cache.
type CacheConfig struct {
	// Path is the SQLite database file. Empty disables caching.
	Path string `json:"path" yaml:"path"`

	// TTL is how long a cached result stays valid (default 24h).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// EducationConfig holds settings for the patient-education enrichment.
type EducationConfig struct {
	HTTPConfig `yaml:",inline"`

	// Enabled controls whether enrichment lookups run.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Terms     TermsConfig     `json:"terms" yaml:"terms"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Chunk     ChunkConfig     `json:"chunk" yaml:"chunk"`
	Summary   SummaryConfig   `json:"summary" yaml:"summary"`
	Verify    VerifyConfig    `json:"verify" yaml:"verify"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Education EducationConfig `json:"education" yaml:"education"`
}

// DefaultPipelineConfig returns the configuration used when no config file
// is present.
func DefaultPipelineConfig() PipelineConfig {
	httpCfg := HTTPConfig{
		Timeout:   30 * time.Second,
		UserAgent: "evidence-engine/0.1",
	}
	return PipelineConfig{
		Terms: TermsConfig{
			HTTPConfig:        httpCfg,
			MeshLookupEnabled: true,
			MaxSynonyms:       3,
		},
		Search: SearchConfig{
			PubMed: SourceConfig{
				HTTPConfig:        httpCfg,
				Enabled:           true,
				RequestsPerSecond: 3,
				MaxResults:        50,
			},
			EuropePMC: SourceConfig{
				HTTPConfig:        httpCfg,
				Enabled:           true,
				RequestsPerSecond: 3,
				MaxResults:        50,
			},
		},
		Chunk: ChunkConfig{SentencesPerChunk: 3},
		Summary: SummaryConfig{
			MaxRetries: 2,
			MinWords:   250,
			MaxWords:   600,
		},
		Verify: VerifyConfig{
			SimThreshold: 0.65,
			TopK:         3,
			Workers:      4,
		},
		Cache: CacheConfig{TTL: 24 * time.Hour},
		Education: EducationConfig{
			HTTPConfig: httpCfg,
		},
	}
}
