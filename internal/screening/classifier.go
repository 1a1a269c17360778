package screening

import (
	"errors"
	"strings"
)

// Visa and seniority labels of the combined classifier.
const (
	VisaAccept = "ACCEPT"
	VisaReject = "REJECT"
	Senior     = "SENIOR"
	NotSenior  = "NOT_SENIOR"
)

// DefaultReason is the reason attached to a verdict the classifier did not explain.
const DefaultReason = "Default allow"

// Verdict is the combined visa/seniority classification of a description.
type Verdict struct {
	VisaStatus   string
	VisaReason   string
	SeniorStatus string
	SeniorReason string
}

// DefaultVerdict lets a posting through both checks.
func DefaultVerdict() Verdict {
	return Verdict{
		VisaStatus:   VisaAccept,
		VisaReason:   DefaultReason,
		SeniorStatus: NotSenior,
		SeniorReason: DefaultReason,
	}
}

// VisaAccepted reports whether the visa check passed. Any status other than
// ACCEPT blocks, including ones the classifier made up.
func (v Verdict) VisaAccepted() bool { return v.VisaStatus == VisaAccept }

// IsSenior reports whether the seniority check failed.
func (v Verdict) IsSenior() bool { return v.SeniorStatus == Senior }

// ClassifierResult carries a verdict and, when the defaults were used, why.
type ClassifierResult struct {
	Verdict Verdict
	Failure *CallFailure
}

var errNoStatusLines = errors.New("no visa_status or senior_status line in response")

// ParseVerdict reads the four-line combined classifier protocol. Missing lines
// keep their defaults; output with no status line at all is a parse failure.
func ParseVerdict(text string) ClassifierResult {
	v := DefaultVerdict()
	sawStatus := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "visa_status:"):
			v.VisaStatus = normalizeVisaStatus(valueAfterColon(line))
			sawStatus = true
		case strings.HasPrefix(lower, "visa_reason:"):
			v.VisaReason = valueAfterColon(line)
		case strings.HasPrefix(lower, "senior_status:"):
			v.SeniorStatus = normalizeSeniorStatus(valueAfterColon(line))
			sawStatus = true
		case strings.HasPrefix(lower, "senior_reason:"):
			v.SeniorReason = valueAfterColon(line)
		}
	}

	if !sawStatus {
		return ClassifierResult{Verdict: v, Failure: parseFailure(errNoStatusLines)}
	}
	return ClassifierResult{Verdict: v}
}

// failedVerdict is the fail-soft verdict after a call error.
func failedVerdict(err error) ClassifierResult {
	v := DefaultVerdict()
	v.VisaReason = "Error: " + err.Error()
	v.SeniorReason = "Error: " + err.Error()
	return ClassifierResult{Verdict: v, Failure: callFailure(err)}
}

func normalizeVisaStatus(s string) string {
	s = strings.ToUpper(s)
	switch {
	case strings.Contains(s, VisaReject):
		return VisaReject
	case strings.Contains(s, VisaAccept):
		return VisaAccept
	default:
		return s
	}
}

func normalizeSeniorStatus(s string) string {
	s = strings.ToUpper(s)
	switch {
	case strings.Contains(s, NotSenior), strings.Contains(s, "NOT SENIOR"):
		return NotSenior
	case strings.Contains(s, Senior):
		return Senior
	default:
		return NotSenior
	}
}

func valueAfterColon(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}
