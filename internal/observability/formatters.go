// Package observability provides logging setup and the formatted summaries
// printed by the CLI.
package observability

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jonathan/jobfunnel/internal/pipeline"
	"github.com/jonathan/jobfunnel/internal/repository"
	"github.com/jonathan/jobfunnel/internal/stats"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes run summaries and job views for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFetchResult outputs the summary of a fetch run.
func (p *Printer) PrintFetchResult(r *pipeline.FetchResult) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Lookback:        %d day(s)\n", r.Days))
	sb.WriteString(fmt.Sprintf("Queries:         %d", r.Queries))
	if r.FailedQueries > 0 {
		sb.WriteString(fmt.Sprintf(" (%d failed)", r.FailedQueries))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Unique postings: %d\n", r.Unique))
	if r.Dropped > 0 {
		sb.WriteString(fmt.Sprintf("Without URL:     %d\n", r.Dropped))
	}
	sb.WriteString(fmt.Sprintf("New postings:    %d\n", r.New))
	sb.WriteString(fmt.Sprintf("Master size:     %d", r.MasterSize))
	if r.FirstRun && r.New > 0 {
		sb.WriteString(" (initialized)")
	}
	if r.DailyPath != "" {
		sb.WriteString(fmt.Sprintf("\nSaved to:        %s", filepath.Base(r.DailyPath)))
	}

	p.printBox("FETCH", sb.String())
}

// PrintScreenResult outputs the outcome counts of a screening run.
func (p *Printer) PrintScreenResult(r *pipeline.ScreenResult) {
	if r == nil {
		return
	}

	var sb strings.Builder
	for _, f := range r.Files {
		sb.WriteString(fmt.Sprintf("%-22s %3d postings, %d passed\n", filepath.Base(f.Path), f.Records, f.Counts.Passed))
	}
	if len(r.Files) > 0 {
		sb.WriteString("\n")
	}

	c := r.Counts
	sb.WriteString(fmt.Sprintf("Passed:         %d\n", c.Passed))
	sb.WriteString(fmt.Sprintf("Visa blocked:   %d\n", c.VisaBlocked))
	sb.WriteString(fmt.Sprintf("Senior blocked: %d\n", c.SeniorBlocked))
	sb.WriteString(fmt.Sprintf("Match failed:   %d\n", c.MatchFailed))
	sb.WriteString(fmt.Sprintf("Skipped:        %d", c.Skipped))
	if c.Errored > 0 {
		sb.WriteString(fmt.Sprintf("\nErrored:        %d", c.Errored))
	}
	if r.Cancelled {
		sb.WriteString("\n\nRun interrupted; rerun to continue.")
	}

	p.printBox("SCREENING", sb.String())
}

// PrintStats outputs the statistics ledger.
func (p *Printer) PrintStats(s stats.Summary) {
	var sb strings.Builder
	last := "never"
	if s.LastFetch != nil {
		last = s.LastFetch.Local().Format(time.DateTime)
	}
	sb.WriteString(fmt.Sprintf("Last fetch:     %s\n", last))
	sb.WriteString(fmt.Sprintf("Total fetched:  %d\n", s.TotalFetched))
	sb.WriteString(fmt.Sprintf("Screened:       %d\n", s.Screened))
	sb.WriteString(fmt.Sprintf("  Passed:         %d\n", s.Passed))
	sb.WriteString(fmt.Sprintf("  Visa blocked:   %d\n", s.VisaBlocked))
	sb.WriteString(fmt.Sprintf("  Senior blocked: %d\n", s.SeniorBlocked))
	sb.WriteString(fmt.Sprintf("  Match failed:   %d\n", s.MatchFailed))
	sb.WriteString(fmt.Sprintf("Pass rate:      %.1f%%\n", s.PassRate))
	sb.WriteString(fmt.Sprintf("Applied:        %d\n", s.Applied))
	sb.WriteString(fmt.Sprintf("Runs recorded:  %d", s.Runs))

	p.printBox("STATISTICS", sb.String())
}

// PrintJobs outputs one line per job.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintJobs(jobs []repository.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(p.out, "No jobs.")
		return
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tSTATUS\tCOMPANY\tROLE\tLOCATION")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			j.ID, j.MatchScore, j.Status, truncate(j.Company, 24), truncate(j.Role, 40), truncate(j.Location, 24))
	}
	_ = tw.Flush()
}

// PrintJob outputs the full view of one job.
func (p *Printer) PrintJob(j *repository.Job) {
	if j == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", j.Company))
	sb.WriteString(fmt.Sprintf("Location: %s", j.Location))
	if j.Remote {
		sb.WriteString(" (remote)")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Status:   %s\n", j.Status))
	sb.WriteString(fmt.Sprintf("Score:    %d (overall %s)\n", j.MatchScore, j.Match.OverallMatch))
	sb.WriteString(fmt.Sprintf("Tags:     %s\n", strings.Join(j.Tags, ", ")))
	sb.WriteString(fmt.Sprintf("Source:   %s\n", j.Source))
	sb.WriteString(fmt.Sprintf("URL:      %s\n\n", j.URL))

	sb.WriteString(fmt.Sprintf("Stack:    %s\n", j.Structured.TechnicalStack))
	sb.WriteString(fmt.Sprintf("Salary:   %s", j.Structured.SalaryRange))
	if j.Structured.SalaryIsEstimated {
		sb.WriteString(" (estimated)")
	}
	sb.WriteString("\n\n")

	writeList(&sb, "Strong fit:", j.Explanation.StrongFit)
	writeList(&sb, "Gaps:", j.Explanation.Gaps)

	if j.VisaAnalysis != "" {
		sb.WriteString(fmt.Sprintf("Visa:     %s\n", j.VisaAnalysis))
	}
	if len(j.Versions) > 0 {
		sb.WriteString(fmt.Sprintf("\nResume versions: %d\n", len(j.Versions)))
		for _, v := range j.Versions {
			sb.WriteString(fmt.Sprintf("  • %s  %s\n", v.VersionID, filepath.Base(v.PDFPath)))
		}
	}

	p.printBox(strings.ToUpper(j.Role)+"  ["+j.ID+"]", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title + "\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

// PrintManualResult outputs the result of a manual add.
func (p *Printer) PrintManualResult(r *pipeline.ManualResult) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job ID:   %s\n", r.JobID))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", r.Title))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", r.Company))
	sb.WriteString(fmt.Sprintf("Match:    %s", r.MatchRating))
	if len(r.Warnings) > 0 {
		sb.WriteString("\n\nWarnings:")
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("\n⚠ %s", w))
		}
	}

	p.printBox("JOB ADDED", sb.String())
}
