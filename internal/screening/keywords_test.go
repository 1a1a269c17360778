package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchSeniorTitle(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Senior Backend Engineer", "senior"},
		{"Sr. Software Engineer", "sr."},
		{"SR Data Engineer", "sr "},
		{"Tech Lead, Platform", "lead"},
		{"Principal Engineer", "principal"},
		{"Head of Infrastructure", "head of"},
		{"VP Engineering", "vp "},
		{"Engineering Manager", "manager"},
		{"Software Engineer II", ""},
		{"Backend Engineer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, MatchSeniorTitle(tt.title))
		})
	}
}

func TestMatchSeniorTitle_SubstringSemantics(t *testing.T) {
	// "lead" also matches inside other words, same as a plain substring test.
	assert.Equal(t, "lead", MatchSeniorTitle("Leading Edge Software Engineer"))
}

func TestMatchVisaBlocker(t *testing.T) {
	tests := []struct {
		name        string
		description string
		expected    string
	}{
		{"citizenship", "Applicants MUST BE A U.S. CITIZEN due to contract terms.", "must be a u.s. citizen"},
		{"no sponsorship", "We will not sponsor work visas for this role.", "will not sponsor"},
		{"clearance", "TS/SCI required at start date.", "ts/sci required"},
		{"clean", "We sponsor H-1B visas and welcome international applicants.", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MatchVisaBlocker(tt.description))
		})
	}
}
