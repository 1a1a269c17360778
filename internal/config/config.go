// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is the config file used when --config is not given.
const DefaultPath = "jobfunnel.toml"

// Classifier providers accepted in screening.provider.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// DefaultClaudeModel is used when the anthropic provider is selected without a model.
const DefaultClaudeModel = "claude-sonnet-4-20250514"

// Config is the full runtime configuration, loaded once at startup and passed
// to each component by value.
type Config struct {
	Search    SearchConfig    `toml:"search" json:"search"`
	Screening ScreeningConfig `toml:"screening" json:"screening"`
	Storage   StorageConfig   `toml:"storage" json:"storage"`
	Watch     WatchConfig     `toml:"watch" json:"watch"`
}

// SearchConfig controls which postings the fetch stage asks for.
type SearchConfig struct {
	Cities            []string `toml:"cities" json:"cities" validate:"dive,required"`
	Remote            []string `toml:"remote" json:"remote" validate:"dive,required"`
	Terms             []string `toml:"terms" json:"terms" validate:"min=1,dive,required"`
	ResultsPerCity    int      `toml:"results_per_city" json:"results_per_city" validate:"gte=1,lte=1000"`
	Sites             []string `toml:"sites" json:"sites" validate:"min=1,dive,oneof=linkedin adzuna"`
	DescriptionFormat string   `toml:"description_format" json:"description_format" validate:"oneof=markdown html plain"`
	MaxLookbackDays   int      `toml:"max_lookback_days" json:"max_lookback_days" validate:"gte=1"`
	RequestsPerSecond float64  `toml:"requests_per_second" json:"requests_per_second" validate:"gt=0"`
	AdzunaCountry     string   `toml:"adzuna_country" json:"adzuna_country" validate:"omitempty,len=2"`
}

// Locations returns the city locations followed by the remote locations.
func (s SearchConfig) Locations() []string {
	out := make([]string, 0, len(s.Cities)+len(s.Remote))
	out = append(out, s.Cities...)
	return append(out, s.Remote...)
}

// HasSite reports whether the named source is enabled.
func (s SearchConfig) HasSite(name string) bool {
	for _, site := range s.Sites {
		if strings.EqualFold(site, name) {
			return true
		}
	}
	return false
}

// ScreeningConfig controls the classifier calls of the screening funnel.
type ScreeningConfig struct {
	Provider             string  `toml:"provider" json:"provider" validate:"oneof=gemini anthropic"`
	Model                string  `toml:"model" json:"model" validate:"required"`
	ExtractionModel      string  `toml:"extraction_model" json:"extraction_model"`
	Temperature          float32 `toml:"temperature" json:"temperature" validate:"gte=0,lte=2"`
	MaxDescriptionLength int     `toml:"max_description_length" json:"max_description_length" validate:"gte=100"`
	MatchThreshold       float64 `toml:"match_threshold" json:"match_threshold" validate:"gte=0,lte=100"`
}

// StorageConfig locates the persisted state.
type StorageConfig struct {
	DataDir  string   `toml:"data_dir" json:"data_dir" validate:"required"`
	CacheTTL Duration `toml:"cache_ttl" json:"cache_ttl"`
	LockTTL  Duration `toml:"lock_ttl" json:"lock_ttl"`
}

// DailyDir is the directory holding daily batches and the result store.
func (s StorageConfig) DailyDir() string {
	return filepath.Join(s.DataDir, "daily")
}

// WatchConfig controls the scheduled fetch+screen loop.
type WatchConfig struct {
	Schedule string `toml:"schedule" json:"schedule" validate:"required"`
}

// Duration is a time.Duration that reads from strings such as "3s" or "2h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used for any value a config file leaves out.
func Default() Config {
	return Config{
		Search: SearchConfig{
			Cities:            []string{},
			Remote:            []string{"Remote"},
			Terms:             []string{"software engineer"},
			ResultsPerCity:    25,
			Sites:             []string{"linkedin"},
			DescriptionFormat: "markdown",
			MaxLookbackDays:   14,
			RequestsPerSecond: 1,
			AdzunaCountry:     "us",
		},
		Screening: ScreeningConfig{
			Provider:             "gemini",
			Model:                "gemini-2.5-flash",
			Temperature:          0.2,
			MaxDescriptionLength: 6000,
			MatchThreshold:       70,
		},
		Storage: StorageConfig{
			DataDir:  "data",
			CacheTTL: Duration{3 * time.Second},
			LockTTL:  Duration{2 * time.Hour},
		},
		Watch: WatchConfig{
			Schedule: "@every 24h",
		},
	}
}

// LoadConfig loads configuration from a TOML or JSON file (chosen by extension),
// fills defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
	}

	merged := cfg.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
		return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
	}
	if len(c.Search.Locations()) == 0 {
		return fmt.Errorf("config error: 'search.cities' and 'search.remote' are both empty")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// Slices: nil means "not set"; an explicit empty list is kept
	if result.Search.Cities == nil {
		result.Search.Cities = defaults.Search.Cities
	}
	if result.Search.Remote == nil {
		result.Search.Remote = defaults.Search.Remote
	}
	if len(result.Search.Terms) == 0 {
		result.Search.Terms = defaults.Search.Terms
	}
	if len(result.Search.Sites) == 0 {
		result.Search.Sites = defaults.Search.Sites
	}

	if result.Search.ResultsPerCity == 0 {
		result.Search.ResultsPerCity = defaults.Search.ResultsPerCity
	}
	if result.Search.DescriptionFormat == "" {
		result.Search.DescriptionFormat = defaults.Search.DescriptionFormat
	}
	if result.Search.MaxLookbackDays == 0 {
		result.Search.MaxLookbackDays = defaults.Search.MaxLookbackDays
	}
	if result.Search.RequestsPerSecond == 0 {
		result.Search.RequestsPerSecond = defaults.Search.RequestsPerSecond
	}
	if result.Search.AdzunaCountry == "" {
		result.Search.AdzunaCountry = defaults.Search.AdzunaCountry
	}

	if result.Screening.Provider == "" {
		result.Screening.Provider = defaults.Screening.Provider
	}
	if result.Screening.Model == "" {
		result.Screening.Model = defaults.Screening.Model
		if result.Screening.Provider == ProviderAnthropic {
			result.Screening.Model = DefaultClaudeModel
		}
	}
	if result.Screening.ExtractionModel == "" {
		// Extraction runs on the screening model unless told otherwise
		result.Screening.ExtractionModel = result.Screening.Model
	}
	if result.Screening.Temperature == 0 {
		result.Screening.Temperature = defaults.Screening.Temperature
	}
	if result.Screening.MaxDescriptionLength == 0 {
		result.Screening.MaxDescriptionLength = defaults.Screening.MaxDescriptionLength
	}
	if result.Screening.MatchThreshold == 0 {
		result.Screening.MatchThreshold = defaults.Screening.MatchThreshold
	}

	if result.Storage.DataDir == "" {
		result.Storage.DataDir = defaults.Storage.DataDir
	}
	if result.Storage.CacheTTL.Duration == 0 {
		result.Storage.CacheTTL = defaults.Storage.CacheTTL
	}
	if result.Storage.LockTTL.Duration == 0 {
		result.Storage.LockTTL = defaults.Storage.LockTTL
	}

	if result.Watch.Schedule == "" {
		result.Watch.Schedule = defaults.Watch.Schedule
	}

	return result
}
