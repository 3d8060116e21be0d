// Package llm abstracts the generation backend behind a single capability:
// given a text prompt, return text. The meeting agent depends only on
// Generator, so the backend can be swapped for a fake in tests or for any
// provider litellm supports in production.
package llm

import "context"

// Generator answers a text prompt with text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Config carries provider settings for the litellm-backed generator.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

// DefaultModel is used when no model is configured. The meeting agent favors
// a fast model: reconciliation runs every few dozen seconds during a live
// meeting and latency matters more than depth.
const DefaultModel = "gemini-2.0-flash"
