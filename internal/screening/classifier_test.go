package screening

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Verdict
	}{
		{
			name:  "accept and not senior",
			input: acceptVerdict,
			expected: Verdict{
				VisaStatus: VisaAccept, VisaReason: "No restrictions mentioned",
				SeniorStatus: NotSenior, SeniorReason: "2+ years required",
			},
		},
		{
			name:  "case-insensitive prefixes and decorated values",
			input: "VISA_STATUS: **Reject**\nVisa_Reason: Requires clearance\nSenior_Status: senior (7+ years)\nsenior_reason: Staff level",
			expected: Verdict{
				VisaStatus: VisaReject, VisaReason: "Requires clearance",
				SeniorStatus: Senior, SeniorReason: "Staff level",
			},
		},
		{
			name:  "not senior with space",
			input: "visa_status: ACCEPT\nsenior_status: Not Senior",
			expected: Verdict{
				VisaStatus: VisaAccept, VisaReason: DefaultReason,
				SeniorStatus: NotSenior, SeniorReason: DefaultReason,
			},
		},
		{
			name:  "unknown visa value is kept",
			input: "visa_status: unclear\nsenior_status: junior",
			expected: Verdict{
				VisaStatus: "UNCLEAR", VisaReason: DefaultReason,
				SeniorStatus: NotSenior, SeniorReason: DefaultReason,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseVerdict(tt.input)
			assert.Nil(t, result.Failure)
			assert.Equal(t, tt.expected, result.Verdict)
		})
	}
}

func TestParseVerdict_UnknownVisaBlocks(t *testing.T) {
	result := ParseVerdict("visa_status: maybe")
	assert.False(t, result.Verdict.VisaAccepted())
	assert.False(t, result.Verdict.IsSenior())
}

func TestParseVerdict_NoStatusLines(t *testing.T) {
	result := ParseVerdict("I cannot determine this from the posting.")
	require.NotNil(t, result.Failure)
	assert.Equal(t, FailureParse, result.Failure.Kind)
	assert.Equal(t, DefaultVerdict(), result.Verdict)
}

func TestFailedVerdict(t *testing.T) {
	result := failedVerdict(errors.New("quota exceeded"))
	require.NotNil(t, result.Failure)
	assert.Equal(t, FailureCall, result.Failure.Kind)
	assert.Equal(t, VisaAccept, result.Verdict.VisaStatus)
	assert.Equal(t, NotSenior, result.Verdict.SeniorStatus)
	assert.Equal(t, "Error: quota exceeded", result.Verdict.VisaReason)
	assert.Equal(t, "Error: quota exceeded", result.Verdict.SeniorReason)
	assert.Contains(t, result.Failure.Error(), "classifier call failure")
}
