package config

import (
	"fmt"
	"os"
)

// Environment variables holding credentials.
const (
	EnvScraperAPIKey = "SCRAPERAPI_KEY"
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
	EnvAdzunaAppID   = "ADZUNA_APP_ID"
	EnvAdzunaAppKey  = "ADZUNA_APP_KEY"
	EnvDatabaseURL   = "DATABASE_URL"
)

// MissingCredentialError is returned when a command needs a credential that is not set.
type MissingCredentialError struct {
	EnvVar  string
	Purpose string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s environment variable is required (%s)", e.EnvVar, e.Purpose)
}

// Credentials holds secrets read from the environment. They are never read from
// the config file.
type Credentials struct {
	ScraperAPIKey string
	GeminiAPIKey  string
	AnthropicKey  string
	AdzunaAppID   string
	AdzunaAppKey  string
	DatabaseURL   string
}

// LoadCredentials reads credentials using getenv (os.Getenv when nil).
func LoadCredentials(getenv func(string) string) Credentials {
	if getenv == nil {
		getenv = os.Getenv
	}
	return Credentials{
		ScraperAPIKey: getenv(EnvScraperAPIKey),
		GeminiAPIKey:  getenv(EnvGeminiAPIKey),
		AnthropicKey:  getenv(EnvAnthropicKey),
		AdzunaAppID:   getenv(EnvAdzunaAppID),
		AdzunaAppKey:  getenv(EnvAdzunaAppKey),
		DatabaseURL:   getenv(EnvDatabaseURL),
	}
}

// ClassifierKey returns the API key for the configured screening provider.
func (c Credentials) ClassifierKey(cfg ScreeningConfig) (string, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		if c.AnthropicKey == "" {
			return "", &MissingCredentialError{EnvVar: EnvAnthropicKey, Purpose: "screening with anthropic"}
		}
		return c.AnthropicKey, nil
	default:
		if c.GeminiAPIKey == "" {
			return "", &MissingCredentialError{EnvVar: EnvGeminiAPIKey, Purpose: "screening with gemini"}
		}
		return c.GeminiAPIKey, nil
	}
}

// RequireFetch checks the credentials needed by every enabled source.
func (c Credentials) RequireFetch(search SearchConfig) error {
	if search.HasSite("linkedin") && c.ScraperAPIKey == "" {
		return &MissingCredentialError{EnvVar: EnvScraperAPIKey, Purpose: "linkedin source"}
	}
	if search.HasSite("adzuna") {
		if c.AdzunaAppID == "" {
			return &MissingCredentialError{EnvVar: EnvAdzunaAppID, Purpose: "adzuna source"}
		}
		if c.AdzunaAppKey == "" {
			return &MissingCredentialError{EnvVar: EnvAdzunaAppKey, Purpose: "adzuna source"}
		}
	}
	return nil
}
