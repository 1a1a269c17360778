package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_CombinedClassifier(t *testing.T) {
	prompt, err := Get(KeyCombinedVisaSenior)
	require.NoError(t, err)
	assert.Contains(t, prompt, "visa_status:")
	assert.Contains(t, prompt, "senior_status:")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("nonexistent-key")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPrompt)
}

func TestScreening_PanicsOnUnknownKey(t *testing.T) {
	assert.Panics(t, func() { Screening("nonexistent-key") })
}

func TestScreening_ProtocolLines(t *testing.T) {
	match := Screening(KeyMatchScreening)
	for _, field := range []string{"Systems_Fit:", "Retrieval_Infra_Fit:", "Algorithmic_ML_Fit:", "Overall:", "Reason:"} {
		assert.Contains(t, match, field)
	}

	assert.Contains(t, Screening(KeyStructuredExtraction), "salary_is_estimated")
	assert.Contains(t, Screening(KeyManualFullExtraction), "job_title")
}

func TestKeys(t *testing.T) {
	keys, err := Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{
		KeyCombinedVisaSenior,
		KeyManualFullExtraction,
		KeyMatchScreening,
		KeyStructuredExtraction,
	}, keys)
}

func TestParse(t *testing.T) {
	_, err := parse([]byte(`{"a": "  "}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	_, err = parse([]byte(`not json`))
	require.Error(t, err)

	set, err := parse([]byte(`{"a": "classify"}`))
	require.NoError(t, err)
	assert.Equal(t, "classify", set["a"])
}
