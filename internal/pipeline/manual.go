package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/jobfunnel/internal/dedup"
	"github.com/jonathan/jobfunnel/internal/ingestion"
	"github.com/jonathan/jobfunnel/internal/screening"
	"github.com/jonathan/jobfunnel/internal/types"
)

// ErrDuplicateJob is returned when a manual add names a URL already in the result store.
var ErrDuplicateJob = errors.New("job already exists")

// Source and search facets of manually added postings.
const (
	SourceManual      = "Manual"
	SourceManualQuick = "Manual (Quick)"
	SourceManualURL   = "Manual (URL)"
	SearchTermManual  = "Manual Entry"
	SearchCityManual  = "Manual"
)

// Defaults for fields left empty in a ManualInput.
const (
	DefaultManualTitle    = "Manual Entry"
	DefaultManualCompany  = "Unknown"
	DefaultManualLocation = "Unknown"
)

var validate = validator.New()

// ManualInput is a posting entered field by field.
type ManualInput struct {
	Title       string
	Company     string
	Location    string
	Description string `validate:"required"`
	URL         string `validate:"omitempty,url"`
	Remote      bool
}

// ManualResult is returned by the manual adds.
type ManualResult struct {
	JobID       string   `json:"job_id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Warnings    []string `json:"warnings"`
	MatchRating string   `json:"match_rating"`
}

// AddManual screens a hand-entered posting and stores it whatever the
// classifier says; rejections become warnings on the stored row.
func (p *Pipeline) AddManual(ctx context.Context, in ManualInput) (*ManualResult, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.URL = strings.TrimSpace(in.URL)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid manual job: %w", err)
	}
	if err := p.requireScreener(); err != nil {
		return nil, err
	}

	master := types.MasterRecord{
		Title:      stringOr(in.Title, DefaultManualTitle),
		Company:    stringOr(in.Company, DefaultManualCompany),
		Location:   stringOr(in.Location, DefaultManualLocation),
		URL:        in.URL,
		IsRemote:   in.Remote,
		Source:     SourceManual,
		SearchTerm: SearchTermManual,
		SearchCity: SearchCityManual,
	}

	var result *ManualResult
	err := p.withLock(func() error {
		if err := p.checkDuplicate(master.URL); err != nil {
			return err
		}
		extracted := p.screener.Extract(ctx, in.Description)
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		result, err = p.storeManual(ctx, master, in.Description, extracted.Fields)
		return err
	})
	return result, err
}

// AddFromText recovers the posting metadata from pasted text with one
// extraction call and then stores it like AddManual.
func (p *Pipeline) AddFromText(ctx context.Context, rawText string) (*ManualResult, error) {
	var result *ManualResult
	err := p.withLock(func() error {
		var err error
		result, err = p.addFromText(ctx, rawText, "", SourceManualQuick)
		return err
	})
	return result, err
}

// AddFromURL downloads a posting page and stores its text like AddFromText.
func (p *Pipeline) AddFromURL(ctx context.Context, url string) (*ManualResult, error) {
	url = strings.TrimSpace(url)
	var result *ManualResult
	err := p.withLock(func() error {
		if err := p.checkDuplicate(url); err != nil {
			return err
		}
		page, err := ingestion.FromURL(ctx, url, ingestion.URLOptions{
			Client: p.httpClient,
			Render: p.render,
			Logger: p.logger,
		})
		if err != nil {
			return fmt.Errorf("failed to fetch job page: %w", err)
		}
		p.emitProgress(StepManual, fmt.Sprintf("Fetched %d characters from %s", len(page.Text), page.Platform), nil)

		result, err = p.addFromText(ctx, page.Text, url, SourceManualURL)
		return err
	})
	return result, err
}

func (p *Pipeline) addFromText(ctx context.Context, rawText, url, source string) (*ManualResult, error) {
	rawText = ingestion.CleanText(rawText)
	if rawText == "" {
		return nil, errors.New("job text is required")
	}
	if err := p.requireScreener(); err != nil {
		return nil, err
	}

	extracted := p.screener.ExtractManual(ctx, rawText)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if url == "" {
		url = extracted.URL
	}
	p.logger.Info().Str("title", extracted.Title).Str("company", extracted.Company).Msg("extracted manual job")

	master := types.MasterRecord{
		Title:      ingestion.SingleLine(extracted.Title),
		Company:    ingestion.SingleLine(extracted.Company),
		Location:   ingestion.SingleLine(extracted.Location),
		URL:        url,
		IsRemote:   extracted.IsRemote,
		Source:     source,
		SearchTerm: SearchTermManual,
		SearchCity: SearchCityManual,
	}
	if err := p.checkDuplicate(master.URL); err != nil {
		return nil, err
	}
	return p.storeManual(ctx, master, extracted.Description, extracted.Fields)
}

func (p *Pipeline) checkDuplicate(url string) error {
	if url == "" {
		return nil
	}
	urls, err := p.stores.Results.URLs()
	if err != nil {
		return fmt.Errorf("failed to read result store: %w", err)
	}
	if urls[url] {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, url)
	}
	return nil
}

// storeManual runs the classifier and scorer for warnings and appends the row.
func (p *Pipeline) storeManual(ctx context.Context, master types.MasterRecord, description string, fields types.StructuredFields) (*ManualResult, error) {
	verdict := p.screener.Classify(ctx, description)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	match := p.screener.Score(ctx, description)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	warnings := manualWarnings(verdict.Verdict)
	rec := types.ScreenedRecord{
		MasterRecord:     master,
		StructuredFields: fields,
		MatchFields:      match.Fields,
		VisaAnalysis:     manualVisaNote(verdict.Verdict.VisaReason, warnings),
	}

	if err := (resultWriter{ctx: ctx, p: p}).Append(rec); err != nil {
		return nil, err
	}
	p.addToMaster(master)

	result := &ManualResult{
		JobID:       rec.ID(),
		Title:       master.Title,
		Company:     master.Company,
		Warnings:    warnings,
		MatchRating: match.Overall,
	}
	p.emitProgress(StepComplete, fmt.Sprintf("Added %s at %s", master.Title, master.Company), result)
	return result, nil
}

// addToMaster records a manual job in an existing master store unless its key
// is already there. Failures only cost future dedup, so they are logged.
func (p *Pipeline) addToMaster(master types.MasterRecord) {
	history, exists, err := p.stores.Master.Load()
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to read master store for manual job")
		return
	}
	if !exists {
		return
	}
	fresh := dedup.Merge(history, []types.MasterRecord{master})
	if len(fresh) == 0 {
		return
	}
	if err := p.stores.Master.Append(fresh); err != nil {
		p.logger.Warn().Err(err).Msg("failed to add manual job to master store")
	}
}

func manualWarnings(v screening.Verdict) []string {
	warnings := []string{}
	if !v.VisaAccepted() {
		warnings = append(warnings, "Visa Check Failed: "+v.VisaReason)
	}
	if v.IsSenior() {
		warnings = append(warnings, "Senior Check Failed: "+v.SeniorReason)
	}
	return warnings
}

func manualVisaNote(reason string, warnings []string) string {
	note := screening.SingleLineNote(reason)
	if len(warnings) > 0 {
		note = "[MANUAL OVERRIDE: " + strings.Join(warnings, " | ") + "] " + note
	}
	return note
}

func stringOr(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return ingestion.SingleLine(s)
	}
	return def
}
