// Package llm provides the classifier client abstraction used by the screening funnel.
// Every call is "system instructions + input text in, text or JSON out"; callers never
// depend on a particular provider.
package llm

// ModelTier represents the capability level a call needs.
type ModelTier string

const (
	// TierLite is for extraction: metadata and structured fields
	TierLite ModelTier = "lite"
	// TierStandard is for screening: visa/seniority classification and match scoring
	TierStandard ModelTier = "standard"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
)

// Config holds the model configuration for a client
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// MaxTokens bounds the response length for providers that require it.
	MaxTokens int
}

// defaultMaxTokens bounds classifier responses; the longest is the manual
// extraction JSON.
const defaultMaxTokens = 4096

// DefaultConfig returns the Gemini configuration used when none is given.
func DefaultConfig() *Config {
	return NewConfig(ProviderGemini, "gemini-2.5-flash", "gemini-2.5-flash-lite")
}

// NewConfig builds a config for a provider with one screening and one extraction model.
func NewConfig(provider Provider, screeningModel, extractionModel string) *Config {
	cfg := &Config{
		Provider:  provider,
		Models:    map[ModelTier]string{TierStandard: screeningModel},
		MaxTokens: defaultMaxTokens,
	}
	if extractionModel != "" {
		cfg.Models[TierLite] = extractionModel
	}
	return cfg
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierLite]; ok && model != "" {
		return model
	}
	return ""
}
