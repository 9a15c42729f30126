// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// LLMGenerator is the production Generator adapter, backed by an
// OpenAI-compatible chat endpoint.
type LLMGenerator struct {
	model llms.Model
}

// NewLLMGenerator builds an adapter from the summary configuration.
func NewLLMGenerator(cfg types.SummaryConfig) (*LLMGenerator, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating generative client: %w", err)
	}
	return &LLMGenerator{model: model}, nil
}

// Generate sends the prompt and returns the raw completion text with any
// code fences stripped.
func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	resp, err := g.model.GenerateContent(ctx, content, llms.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("calling generative service: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generative service returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	text = strings.TrimPrefix(text, "```markdown")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text), nil
}
