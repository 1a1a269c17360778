package screening

import (
	"strconv"
	"strings"

	"github.com/jonathan/jobfunnel/internal/types"
)

// MatchErrorOutput stands in for the scorer response when the call fails, so
// the failure is scored 0 and stored like any other response.
const MatchErrorOutput = "Overall: 0\nReason: Error during screening."

// Labels of the legacy textual rating.
var passingRatings = []string{"HIGH", "MEDIUM", "STRONG MATCH"}

// MatchResult is the parsed relevance scorer response.
type MatchResult struct {
	Raw     string
	Fields  types.MatchFields
	Overall string
	Passed  bool
	Failure *CallFailure
}

// ParseMatchFields reads the scorer protocol into result columns. Fields that
// are missing read as UNKNOWN; the reason may span several lines, which are
// joined with " | ".
func ParseMatchFields(text string) types.MatchFields {
	fields := types.MatchFields{
		SystemsFit:        types.Unknown,
		RetrievalInfraFit: types.Unknown,
		AlgorithmicMLFit:  types.Unknown,
		OverallMatch:      types.Unknown,
	}

	var reason []string
	inReason := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "Systems_Fit:"):
			fields.SystemsFit = valueAfterColon(line)
		case strings.HasPrefix(line, "Retrieval_Infra_Fit:"):
			fields.RetrievalInfraFit = valueAfterColon(line)
		case strings.HasPrefix(line, "Algorithmic_ML_Fit:"):
			fields.AlgorithmicMLFit = valueAfterColon(line)
		case strings.HasPrefix(line, "Overall:"):
			fields.OverallMatch = valueAfterColon(line)
		case strings.HasPrefix(line, "Reason:"):
			inReason = true
			if v := valueAfterColon(line); v != "" {
				reason = append(reason, v)
			}
		case inReason:
			reason = append(reason, line)
		}
	}

	fields.MatchReason = strings.Join(reason, " | ")
	return fields
}

// OverallRating returns the value of the first Overall line, or "0" when there is none.
func OverallRating(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Overall:") {
			return valueAfterColon(line)
		}
	}
	return "0"
}

// Passes decides the match stage. A numeric rating passes when it is at least
// threshold. A non-numeric rating passes when it names HIGH, MEDIUM or STRONG MATCH.
func Passes(overall string, threshold float64) bool {
	if score, err := strconv.ParseFloat(strings.TrimSpace(overall), 64); err == nil {
		return score >= threshold
	}
	upper := strings.ToUpper(overall)
	for _, label := range passingRatings {
		if strings.Contains(upper, label) {
			return true
		}
	}
	return false
}

// EvaluateMatch parses a scorer response and applies the threshold.
func EvaluateMatch(raw string, threshold float64) MatchResult {
	overall := OverallRating(raw)
	return MatchResult{
		Raw:     raw,
		Fields:  ParseMatchFields(raw),
		Overall: overall,
		Passed:  Passes(overall, threshold),
	}
}
