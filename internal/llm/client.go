package llm

import (
	"context"
	"fmt"
)

// Request is a single classifier call.
type Request struct {
	// System holds the instructions; Input is the text being classified.
	System      string
	Input       string
	Tier        ModelTier
	Temperature float32
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent returns the free-text response to a request
	GenerateContent(ctx context.Context, req Request) (string, error)
	// GenerateJSON returns a JSON response with any markdown wrapper removed
	GenerateJSON(ctx context.Context, req Request) (string, error)
	// GetModel returns the provider model name used for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderAnthropic:
		return NewClaudeClient(config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}
