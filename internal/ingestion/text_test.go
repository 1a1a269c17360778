package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n  \n  ", ""},
		{"headings kept and unindented", "  # Backend Engineer\n## About", "# Backend Engineer\n## About"},
		{"bullets keep indentation", "- Go\n  * Kafka", "- Go\n  * Kafka"},
		{"inner spaces collapsed", "Build    reliable    services", "Build reliable services"},
		{"blank runs collapse", "Line 1\n\n\n\n\nLine 2", "Line 1\n\nLine 2"},
		{"line endings", "a\r\nb\rc", "a\nb\nc"},
		{"unicode kept", "Café 🚀 équipe", "Café 🚀 équipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "Title   here\n\n\nBody   text"
	assert.Equal(t, CleanText(input), CleanText(input))
	assert.Equal(t, CleanText(input), CleanText(CleanText(input)))
}

func TestReadTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posting.txt")
	require.NoError(t, os.WriteFile(path, []byte("Data Engineer\r\n\r\n\r\n\r\nAcme   Corp"), 0o644))

	text, err := ReadTextFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer\n\nAcme Corp", text)
}

func TestReadTextFile_NotFound(t *testing.T) {
	_, err := ReadTextFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}
