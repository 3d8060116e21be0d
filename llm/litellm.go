package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/voocel/litellm"
)

// LiteLLMGenerator implements Generator using the litellm library.
type LiteLLMGenerator struct {
	client *litellm.Client
	model  string
}

// NewLiteLLMGenerator creates a generator routed to the provider that serves
// the configured model.
func NewLiteLLMGenerator(config Config) (*LiteLLMGenerator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 4096
	}

	var client *litellm.Client
	switch {
	case isGeminiModel(config.Model):
		if config.BaseURL != "" {
			client = litellm.New(
				litellm.WithGemini(config.APIKey, config.BaseURL),
				litellm.WithDefaults(config.MaxTokens, config.Temperature),
			)
		} else {
			client = litellm.New(
				litellm.WithGemini(config.APIKey),
				litellm.WithDefaults(config.MaxTokens, config.Temperature),
			)
		}
	case isAnthropicModel(config.Model):
		if config.BaseURL != "" {
			client = litellm.New(
				litellm.WithAnthropic(config.APIKey, config.BaseURL),
				litellm.WithDefaults(config.MaxTokens, config.Temperature),
			)
		} else {
			client = litellm.New(
				litellm.WithAnthropic(config.APIKey),
				litellm.WithDefaults(config.MaxTokens, config.Temperature),
			)
		}
	default:
		// OpenAI or any OpenAI-compatible endpoint.
		if config.BaseURL != "" {
			client = litellm.New(
				litellm.WithOpenAI(config.APIKey, config.BaseURL),
				litellm.WithDefaults(config.MaxTokens, config.Temperature),
			)
		} else {
			client = litellm.New(
				litellm.WithOpenAI(config.APIKey),
				litellm.WithDefaults(config.MaxTokens, config.Temperature),
			)
		}
	}

	return &LiteLLMGenerator{
		client: client,
		model:  config.Model,
	}, nil
}

// Generate sends the prompt as a single user message and returns the reply text.
func (g *LiteLLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := &litellm.Request{
		Model: g.model,
		Messages: []litellm.Message{
			{Role: "user", Content: prompt},
		},
	}

	resp, err := g.client.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("litellm completion failed: %w", err)
	}

	return resp.Content, nil
}

// Model returns the model name the generator is routed to.
func (g *LiteLLMGenerator) Model() string {
	return g.model
}

func isGeminiModel(model string) bool {
	return strings.HasPrefix(model, "gemini")
}

func isAnthropicModel(model string) bool {
	return strings.HasPrefix(model, "claude")
}
