package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobID_Deterministic(t *testing.T) {
	tests := []struct {
		company string
		title   string
		url     string
	}{
		{"Acme", "ML Engineer", "https://example.com/jobs/1"},
		{"", "", ""},
		{"Ünïcode GmbH", "Ingénieur", "https://example.com/jobs/é"},
	}

	for _, tt := range tests {
		first := JobID(tt.company, tt.title, tt.url)
		second := JobID(tt.company, tt.title, tt.url)
		assert.Equal(t, first, second)
		assert.Len(t, first, 12)
	}
}

func TestJobID_KnownValue(t *testing.T) {
	id := JobID("Acme", "Engineer", "https://x")
	assert.Equal(t, "d74fe0e46813", id)
	assert.NotEqual(t, id, JobID("Acme", "Engineer", "https://y"))
	assert.NotEqual(t, id, JobID("Engineer", "Acme", "https://x"))
}

func TestMasterRecord_ID(t *testing.T) {
	rec := MasterRecord{Title: "Backend Engineer", Company: "Globex", URL: "https://globex.example/1"}
	assert.Equal(t, JobID("Globex", "Backend Engineer", "https://globex.example/1"), rec.ID())

	screened := ScreenedRecord{MasterRecord: rec}
	assert.Equal(t, rec.ID(), screened.ID())
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    JobStatus
		wantErr bool
	}{
		{"applied", StatusApplied, false},
		{"  STARRED ", StatusStarred, false},
		{"not_applied", StatusNotApplied, false},
		{"skipped", StatusSkipped, false},
		{"rejected", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown job status")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnLayouts(t *testing.T) {
	assert.Len(t, MasterColumns, 8)
	assert.Equal(t, append(append([]string{}, MasterColumns...), ColDescription), DailyColumns)
	assert.NotContains(t, ResultColumns, ColDescription)
	assert.Equal(t, ColVisaAnalysis, ResultColumns[len(ResultColumns)-1])
	assert.Len(t, ResultColumns, 20)
}

func TestScreenedRecord_JSONFlattensEmbedded(t *testing.T) {
	rec := ScreenedRecord{
		MasterRecord:     MasterRecord{Title: "Engineer", URL: "https://example.com/1"},
		StructuredFields: DefaultStructuredFields(),
		MatchFields:      MatchFields{OverallMatch: "80"},
		VisaAnalysis:     "Sponsorship available",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title":"Engineer"`)
	assert.Contains(t, string(data), `"salary_is_estimated":true`)
	assert.Contains(t, string(data), `"overall_match":"80"`)
}
