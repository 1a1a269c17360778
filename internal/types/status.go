package types

import (
	"fmt"
	"strings"
)

// JobStatus is the human-assigned lifecycle state of a screened posting.
type JobStatus string

// Lifecycle states. NotApplied is implied for postings with no overlay entry.
const (
	StatusNotApplied JobStatus = "not_applied"
	StatusApplied    JobStatus = "applied"
	StatusSkipped    JobStatus = "skipped"
	StatusStarred    JobStatus = "starred"
)

// AllStatuses lists every valid status in display order.
var AllStatuses = []JobStatus{StatusNotApplied, StatusApplied, StatusSkipped, StatusStarred}

// ParseStatus converts user input into a JobStatus.
func ParseStatus(s string) (JobStatus, error) {
	normalized := JobStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, status := range AllStatuses {
		if normalized == status {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// String implements fmt.Stringer.
func (s JobStatus) String() string {
	return string(s)
}
