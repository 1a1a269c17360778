package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Positive(t, config.MaxTokens)
}

func TestNewConfig(t *testing.T) {
	config := NewConfig(ProviderAnthropic, "claude-a", "claude-b")
	assert.Equal(t, ProviderAnthropic, config.Provider)
	assert.Equal(t, "claude-a", config.GetModel(TierStandard))
	assert.Equal(t, "claude-b", config.GetModel(TierLite))

	// Extraction falls back to the screening model when unset
	config = NewConfig(ProviderGemini, "gemini-x", "")
	assert.Equal(t, "gemini-x", config.GetModel(TierLite))
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{TierLite: "fallback-model"},
	}
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
	assert.Equal(t, "fallback-model", config.GetModel(TierStandard))

	empty := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", empty.GetModel(TierStandard))
}

func TestNewClient_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, &Config{Provider: "openai"}, "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")

	_, err = NewClient(ctx, NewConfig(ProviderAnthropic, "m", ""), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")

	_, err = NewClient(ctx, nil, "")
	require.Error(t, err)
}

func TestNewClient_Anthropic(t *testing.T) {
	client, err := NewClient(context.Background(), NewConfig(ProviderAnthropic, "claude-a", ""), "key")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	assert.IsType(t, &ClaudeClient{}, client)
	assert.Equal(t, "claude-a", client.GetModel(TierLite))
}
