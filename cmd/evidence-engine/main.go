// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the evidence-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evidence-engine/internal/secrets"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the evidence-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "evidence-engine",
	Short: "Clinical evidence retrieval, summarization, and citation verification",
	Long: `evidence-engine answers clinical questions with cited evidence. It generates
PICO/MeSH search terms, retrieves records from PubMed and Europe PMC in
parallel, deduplicates and re-ranks them by evidentiary strength, chunks the
surviving abstracts into anchored units, produces a six-section summary with
inline citation markers, and verifies every generated claim against its
source text.

Each stage is also exposed as a subcommand (terms, search) for inspection;
review runs the full pipeline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./evidence-engine.yaml or ~/.config/evidence-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("evidence-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "evidence-engine"))
		}
	}

	viper.SetEnvPrefix("EVIDENCE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadPipelineConfig builds the stage configuration from defaults, the
// config file, and loaded secrets, in that precedence order.
func loadPipelineConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()

	if v := viper.GetFloat64("search.pubmed.requests_per_second"); v > 0 {
		cfg.Search.PubMed.RequestsPerSecond = v
	}
	if v := viper.GetInt("search.pubmed.max_results"); v > 0 {
		cfg.Search.PubMed.MaxResults = v
	}
	if v := viper.GetFloat64("search.europepmc.requests_per_second"); v > 0 {
		cfg.Search.EuropePMC.RequestsPerSecond = v
	}
	if v := viper.GetInt("search.europepmc.max_results"); v > 0 {
		cfg.Search.EuropePMC.MaxResults = v
	}
	if viper.IsSet("search.pubmed.enabled") {
		cfg.Search.PubMed.Enabled = viper.GetBool("search.pubmed.enabled")
	}
	if viper.IsSet("search.europepmc.enabled") {
		cfg.Search.EuropePMC.Enabled = viper.GetBool("search.europepmc.enabled")
	}
	if v := viper.GetDuration("http.timeout"); v > 0 {
		cfg.Terms.Timeout = v
		cfg.Search.PubMed.Timeout = v
		cfg.Search.EuropePMC.Timeout = v
		cfg.Education.Timeout = v
	}
	if viper.IsSet("terms.mesh_lookup_enabled") {
		cfg.Terms.MeshLookupEnabled = viper.GetBool("terms.mesh_lookup_enabled")
	}
	if v := viper.GetInt("chunk.sentences_per_chunk"); v > 0 {
		cfg.Chunk.SentencesPerChunk = v
	}
	if v := viper.GetString("summary.model"); v != "" {
		cfg.Summary.Model = v
	}
	if v := viper.GetString("summary.base_url"); v != "" {
		cfg.Summary.BaseURL = v
	}
	if v := viper.GetFloat64("verify.sim_threshold"); v > 0 {
		cfg.Verify.SimThreshold = v
	}
	if v := viper.GetInt("verify.top_k"); v > 0 {
		cfg.Verify.TopK = v
	}
	if v := viper.GetInt("verify.workers"); v > 0 {
		cfg.Verify.Workers = v
	}
	if v := viper.GetString("cache.path"); v != "" {
		cfg.Cache.Path = v
	}
	if v := viper.GetDuration("cache.ttl"); v > 0 {
		cfg.Cache.TTL = v
	}
	if viper.IsSet("education.enabled") {
		cfg.Education.Enabled = viper.GetBool("education.enabled")
	}

	cfg.Search.PubMed.APIKey = secretDefault("ncbi-api-key", viper.GetString("search.pubmed.api_key"))
	cfg.Search.EuropePMC.Email = secretDefault("europepmc-email", viper.GetString("search.europepmc.email"))
	cfg.Summary.APIKey = secretDefault("generative-api-key", viper.GetString("summary.api_key"))

	return cfg
}

// reviewDeadline is how long one pipeline run may take before degrading.
const reviewDeadline = 5 * time.Minute

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
