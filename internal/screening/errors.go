// Package screening implements the per-posting screening funnel: two keyword
// filters, a combined visa/seniority classifier, a relevance scorer and a
// structured-field extractor.
package screening

import "fmt"

// FailureKind tells whether a classifier call failed outright or returned
// output that could not be understood.
type FailureKind string

const (
	// FailureCall is a transport or provider error.
	FailureCall FailureKind = "call"
	// FailureParse is a response that did not follow the output protocol.
	FailureParse FailureKind = "parse"
)

// CallFailure records why a classifier call fell back to its defaults.
type CallFailure struct {
	Kind FailureKind
	Err  error
}

func (e *CallFailure) Error() string {
	return fmt.Sprintf("classifier %s failure: %v", e.Kind, e.Err)
}

func (e *CallFailure) Unwrap() error {
	return e.Err
}

func callFailure(err error) *CallFailure {
	return &CallFailure{Kind: FailureCall, Err: err}
}

func parseFailure(err error) *CallFailure {
	return &CallFailure{Kind: FailureParse, Err: err}
}
