// Package llm provides the language-model collaborators: intent
// classification and grounded answer generation.
package llm

import (
	"context"

	"github.com/keeperhq/keeper/internal/service"
)

// Client defines the interface for LLM providers. It satisfies both
// service.Classifier and service.Generator.
type Client interface {
	Classify(ctx context.Context, text string) (*service.Classification, error)
	Generate(ctx context.Context, prompt string) (<-chan service.GenerationChunk, error)
}

// Config holds provider configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}
