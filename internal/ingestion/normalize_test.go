package ingestion

import (
	"testing"

	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Backend Engineer", "Backend Engineer"},
		{"newline run becomes one space", "Line 1\r\n\r\nLine 2\nLine 3", "Line 1 Line 2 Line 3"},
		{"trimmed", "  \n Acme \r\n", "Acme"},
		{"invalid utf8 repaired", "Caf\xe9", "Caf�"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SingleLine(tt.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	raws := []types.RawPosting{
		{
			Title:       "Backend\nEngineer",
			Company:     " Acme ",
			Location:    "Seattle, WA",
			Description: "Build things.\n\n- Go\n- Postgres",
			URL:         " https://jobs.example.com/1 ",
			IsRemote:    false,
			Source:      "linkedin",
			SearchCity:  "Seattle, WA",
			SearchTerm:  "backend engineer",
		},
		{Title: "No URL", Company: "Acme", URL: "   "},
		{Title: "Backend Engineer (repost)", Company: "Acme", URL: "https://jobs.example.com/1"},
		{Title: "ML Engineer", Company: "Globex", URL: "https://jobs.example.com/2", IsRemote: true},
		{Title: "Dropped too", Company: "Globex"},
	}

	batch := Normalize(raws)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, 2, batch.Dropped)
	assert.Equal(t, 1, batch.Duplicates)

	first := batch.Records[0]
	assert.Equal(t, "Backend Engineer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "https://jobs.example.com/1", first.URL)
	assert.Equal(t, "Build things. - Go - Postgres", first.Description)
	assert.Equal(t, "linkedin", first.Source)
	assert.Equal(t, "backend engineer", first.SearchTerm)

	second := batch.Records[1]
	assert.Equal(t, "ML Engineer", second.Title)
	assert.True(t, second.IsRemote)
}

func TestNormalize_Empty(t *testing.T) {
	batch := Normalize(nil)
	assert.Empty(t, batch.Records)
	assert.Zero(t, batch.Dropped)
	assert.Zero(t, batch.Duplicates)
}
