package screening

import (
	"testing"

	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestParseMatchFields(t *testing.T) {
	fields := ParseMatchFields(strongMatch)
	assert.Equal(t, types.MatchFields{
		SystemsFit:        "85",
		RetrievalInfraFit: "70",
		AlgorithmicMLFit:  "40",
		OverallMatch:      "78",
		MatchReason:       "- Go microservices | - Limited ML focus",
	}, fields)
}

func TestParseMatchFields_ReasonOnSameLine(t *testing.T) {
	fields := ParseMatchFields("Overall: 64\nReason: Good backend overlap\n\ncontinues here")
	assert.Equal(t, "64", fields.OverallMatch)
	assert.Equal(t, "Good backend overlap | continues here", fields.MatchReason)
	assert.Equal(t, types.Unknown, fields.SystemsFit)
}

func TestParseMatchFields_Empty(t *testing.T) {
	fields := ParseMatchFields("")
	assert.Equal(t, types.Unknown, fields.OverallMatch)
	assert.Equal(t, "", fields.MatchReason)
}

func TestOverallRating(t *testing.T) {
	assert.Equal(t, "78", OverallRating(strongMatch))
	assert.Equal(t, "HIGH", OverallRating("  Overall: HIGH\nOverall: 10"))
	assert.Equal(t, "0", OverallRating("Systems_Fit: 90"))
}

func TestPasses(t *testing.T) {
	tests := []struct {
		name     string
		overall  string
		expected bool
	}{
		{"equal to threshold passes", "70", true},
		{"one below fails", "69", false},
		{"fraction below fails", "69.9", false},
		{"above passes", "92.5", true},
		{"legacy high", "HIGH", true},
		{"legacy medium", "Medium", true},
		{"legacy strong match", "STRONG MATCH", true},
		{"legacy low", "LOW", false},
		{"garbage", "n/a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Passes(tt.overall, 70))
		})
	}
}

func TestEvaluateMatch_ErrorOutput(t *testing.T) {
	result := EvaluateMatch(MatchErrorOutput, 70)
	assert.False(t, result.Passed)
	assert.Equal(t, "0", result.Overall)
	assert.Equal(t, "Error during screening.", result.Fields.MatchReason)
}
