// Package prompts holds the classifier system instructions, embedded from
// screening.json at compile time.
package prompts

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

//go:embed screening.json
var screeningJSON []byte

// Prompt keys in screening.json.
const (
	KeyCombinedVisaSenior   = "combined-visa-senior"
	KeyMatchScreening       = "match-screening"
	KeyStructuredExtraction = "structured-extraction"
	KeyManualFullExtraction = "manual-full-extraction"
)

// ErrUnknownPrompt is returned for a key missing from screening.json.
var ErrUnknownPrompt = errors.New("unknown prompt")

var loadScreening = sync.OnceValues(func() (map[string]string, error) {
	return parse(screeningJSON)
})

func parse(data []byte) (map[string]string, error) {
	var set map[string]string
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse screening prompts: %w", err)
	}
	for key, text := range set {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("prompt %q is empty", key)
		}
	}
	return set, nil
}

// Get returns the prompt stored under key.
func Get(key string) (string, error) {
	set, err := loadScreening()
	if err != nil {
		return "", err
	}
	text, ok := set[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPrompt, key)
	}
	return text, nil
}

// Screening returns the prompt stored under key and panics when it is missing.
// Keys are the constants above, so a miss is a build defect.
func Screening(key string) string {
	text, err := Get(key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return text
}

// Keys returns every prompt key, sorted.
func Keys() ([]string, error) {
	set, err := loadScreening()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}
