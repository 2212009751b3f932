package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/keeperhq/keeper/internal/common"
	"github.com/keeperhq/keeper/internal/service"
)

// NewClient creates an LLM client for the configured provider, wrapped
// with rate-limit-aware retry on classification calls.
func NewClient(cfg Config) (Client, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "anthropic", "":
		client, err = newAnthropicClient(cfg)
	case "openai":
		client, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &retryClient{inner: client}, nil
}

// retryClient retries transient classification failures. Generation is
// never retried: a broken stream surfaces whatever text already arrived.
type retryClient struct {
	inner Client
}

func (r *retryClient) Classify(ctx context.Context, text string) (*service.Classification, error) {
	var result *service.Classification
	err := common.WithRetry(ctx, func() error {
		var classifyErr error
		result, classifyErr = r.inner.Classify(ctx, text)
		if classifyErr != nil && !common.IsRetryable(classifyErr) {
			return &common.RetryableError{Err: classifyErr, Retryable: false}
		}
		return classifyErr
	}, common.RetryOptions{MaxAttempts: 3})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *retryClient) Generate(ctx context.Context, prompt string) (<-chan service.GenerationChunk, error) {
	return r.inner.Generate(ctx, prompt)
}
