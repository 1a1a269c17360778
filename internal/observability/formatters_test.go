package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/jobfunnel/internal/pipeline"
	"github.com/jonathan/jobfunnel/internal/repository"
	"github.com/jonathan/jobfunnel/internal/screening"
	"github.com/jonathan/jobfunnel/internal/stats"
	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintFetchResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFetchResult(&pipeline.FetchResult{
		Days:          3,
		Queries:       4,
		FailedQueries: 1,
		Unique:        12,
		New:           5,
		MasterSize:    40,
		DailyPath:     "/data/daily/jobs_2026-03-02.csv",
	})
	output := buf.String()

	assert.Contains(t, output, "FETCH")
	assert.Contains(t, output, "3 day(s)")
	assert.Contains(t, output, "(1 failed)")
	assert.Contains(t, output, "New postings:    5")
	assert.Contains(t, output, "jobs_2026-03-02.csv")
	assert.NotContains(t, output, "/data/daily")
}

func TestPrintFetchResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFetchResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintScreenResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintScreenResult(&pipeline.ScreenResult{
		Files: []pipeline.FileResult{
			{Path: "data/daily/jobs_2026-03-01.csv", Records: 10, Counts: screening.Counts{Passed: 2}},
		},
		Counts:    screening.Counts{Passed: 2, VisaBlocked: 3, SeniorBlocked: 4, MatchFailed: 1, Errored: 1},
		Cancelled: true,
	})
	output := buf.String()

	assert.Contains(t, output, "SCREENING")
	assert.Contains(t, output, "jobs_2026-03-01.csv")
	assert.Contains(t, output, "Senior blocked: 4")
	assert.Contains(t, output, "Errored:        1")
	assert.Contains(t, output, "interrupted")
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	last := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	NewPrinter(&buf).PrintStats(stats.Summary{
		LastFetch:    &last,
		TotalFetched: 120,
		Passed:       6,
		Screened:     24,
		PassRate:     25,
		Applied:      2,
	})
	output := buf.String()

	assert.Contains(t, output, "STATISTICS")
	assert.Contains(t, output, "Total fetched:  120")
	assert.Contains(t, output, "25.0%")
	assert.Contains(t, output, "Applied:        2")
}

func TestPrintStats_NeverFetched(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStats(stats.Summary{})
	assert.Contains(t, buf.String(), "never")
}

func TestPrintJobs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobs([]repository.Job{
		{ID: "abc123def456", MatchScore: 78, Status: types.StatusApplied, Company: "Acme", Role: "Backend Engineer", Location: "Seattle, WA"},
		{ID: "0123456789ab", MatchScore: 85, Status: types.StatusNotApplied, Company: "Globex", Role: strings.Repeat("Platform ", 10), Location: "Remote"},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, lines[1], "abc123def456")
	assert.Contains(t, lines[1], "applied")
	assert.Contains(t, lines[2], "...")
}

func TestPrintJobs_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobs(nil)
	assert.Equal(t, "No jobs.\n", buf.String())
}

func TestPrintJob(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJob(&repository.Job{
		ID:         "abc123def456",
		Company:    "Acme",
		Role:       "Backend Engineer",
		Remote:     true,
		Status:     types.StatusStarred,
		MatchScore: 78,
		Tags:       []string{"backend", "infra"},
		Structured: types.StructuredFields{TechnicalStack: "Go, Kafka", SalaryRange: "$150k", SalaryIsEstimated: true},
		Match:      types.MatchFields{OverallMatch: "78"},
		Explanation: repository.MatchExplanation{
			StrongFit: []string{"Go services"},
			Gaps:      []string{"No ML"},
		},
		Versions: []types.ArtifactVersion{{VersionID: "v1", PDFPath: "/out/resume_v1.pdf"}},
	})
	output := buf.String()

	assert.Contains(t, output, "BACKEND ENGINEER  [abc123def456]")
	assert.Contains(t, output, "(remote)")
	assert.Contains(t, output, "starred")
	assert.Contains(t, output, "backend, infra")
	assert.Contains(t, output, "(estimated)")
	assert.Contains(t, output, "Go services")
	assert.Contains(t, output, "No ML")
	assert.Contains(t, output, "resume_v1.pdf")
}

func TestPrintManualResult(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintManualResult(&pipeline.ManualResult{
		JobID:       "abc123def456",
		Title:       "Staff Engineer",
		Company:     "Acme",
		MatchRating: "40",
		Warnings:    []string{"Senior Check Failed: Staff level"},
	})
	output := buf.String()

	assert.Contains(t, output, "JOB ADDED")
	assert.Contains(t, output, "abc123def456")
	assert.Contains(t, output, "⚠ Senior Check Failed: Staff level")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééééééé...", truncate(strings.Repeat("é", 20), 10))
}
