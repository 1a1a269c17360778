package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/jobfunnel/internal/config"
	"github.com/jonathan/jobfunnel/internal/llm"
	"github.com/jonathan/jobfunnel/internal/prompts"
	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
)

// Stage names a step of the funnel.
type Stage string

// Funnel stages in the order they run.
const (
	StageGuard         Stage = "guard"
	StageSeniorKeyword Stage = "senior_keyword"
	StageVisaKeyword   Stage = "visa_keyword"
	StageClassifier    Stage = "classifier"
	StageMatch         Stage = "match"
	StageExtract       Stage = "extract"
	StagePersist       Stage = "persist"
)

// Outcome is the terminal state of one record.
type Outcome string

// Funnel outcomes.
const (
	OutcomePassed        Outcome = "passed"
	OutcomeSeniorBlocked Outcome = "senior_blocked"
	OutcomeVisaBlocked   Outcome = "visa_blocked"
	OutcomeMatchFailed   Outcome = "match_failed"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeErrored       Outcome = "errored"
)

// ErrorReason is the reason recorded for an errored record.
const ErrorReason = "Error during screening"

// ExtractionTemperature keeps structured extraction close to deterministic.
const ExtractionTemperature float32 = 0.1

// Decision is the result of running one record through the funnel. Record is
// set only when the outcome is passed.
type Decision struct {
	Outcome Outcome
	Stage   Stage
	Reason  string
	Record  *types.ScreenedRecord
	Err     error
}

func reject(outcome Outcome, stage Stage, reason string) Decision {
	return Decision{Outcome: outcome, Stage: stage, Reason: reason}
}

func errored(stage Stage, err error) Decision {
	return Decision{Outcome: OutcomeErrored, Stage: stage, Reason: ErrorReason, Err: err}
}

// Options tune the classifier stages.
type Options struct {
	MatchThreshold       float64
	MaxDescriptionLength int
	Temperature          float32
}

// OptionsFromConfig reads the screening section of the configuration.
func OptionsFromConfig(cfg config.ScreeningConfig) Options {
	return Options{
		MatchThreshold:       cfg.MatchThreshold,
		MaxDescriptionLength: cfg.MaxDescriptionLength,
		Temperature:          cfg.Temperature,
	}
}

// Screener runs the funnel stages for single records. It holds no per-run
// state; see Funnel for the idempotency guard and persistence.
type Screener struct {
	client llm.Client
	opts   Options
	logger zerolog.Logger
}

// NewScreener creates a screener backed by client.
func NewScreener(client llm.Client, opts Options, logger zerolog.Logger) *Screener {
	return &Screener{client: client, opts: opts, logger: logger}
}

// Threshold is the configured match threshold.
func (s *Screener) Threshold() float64 { return s.opts.MatchThreshold }

// CheckSeniorKeyword is stage 1. It looks at the title only.
func (s *Screener) CheckSeniorKeyword(title string) (string, bool) {
	if kw := MatchSeniorTitle(title); kw != "" {
		return fmt.Sprintf("title contains %q", kw), true
	}
	return "", false
}

// CheckVisaKeyword is stage 2. It scans the full description.
func (s *Screener) CheckVisaKeyword(description string) (string, bool) {
	if phrase := MatchVisaBlocker(description); phrase != "" {
		return fmt.Sprintf("description contains %q", phrase), true
	}
	return "", false
}

// Classify is stage 3: one combined visa and seniority call. It never fails;
// a call or parse failure yields the permissive defaults with Failure set.
func (s *Screener) Classify(ctx context.Context, description string) ClassifierResult {
	text, err := s.client.GenerateContent(ctx, llm.Request{
		System:      prompts.Screening(prompts.KeyCombinedVisaSenior),
		Input:       s.truncate(description),
		Tier:        llm.TierStandard,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("combined classifier call failed, using defaults")
		return failedVerdict(err)
	}

	result := ParseVerdict(text)
	if result.Failure != nil {
		s.logger.Warn().Err(result.Failure).Msg("combined classifier response not understood, using defaults")
	}
	return result
}

// Score is stage 4: the relevance scorer. A failed call is scored from
// MatchErrorOutput and therefore fails the threshold.
func (s *Screener) Score(ctx context.Context, description string) MatchResult {
	text, err := s.client.GenerateContent(ctx, llm.Request{
		System:      prompts.Screening(prompts.KeyMatchScreening),
		Input:       s.truncate(description),
		Tier:        llm.TierStandard,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("match scorer call failed")
		result := EvaluateMatch(MatchErrorOutput, s.opts.MatchThreshold)
		result.Failure = callFailure(err)
		return result
	}
	return EvaluateMatch(strings.TrimSpace(text), s.opts.MatchThreshold)
}

// Extract is stage 5: structured fields for the result row. Failures yield
// the defaults.
func (s *Screener) Extract(ctx context.Context, description string) ExtractResult {
	text, err := s.client.GenerateJSON(ctx, llm.Request{
		System:      prompts.Screening(prompts.KeyStructuredExtraction),
		Input:       s.truncate(description),
		Tier:        llm.TierLite,
		Temperature: ExtractionTemperature,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("structured extraction call failed, using defaults")
		return ExtractResult{Fields: types.DefaultStructuredFields(), Failure: callFailure(err)}
	}

	result := ParseExtraction(text)
	if result.Failure != nil {
		s.logger.Warn().Err(result.Failure).Msg("structured extraction response invalid, using defaults")
	}
	return result
}

// ExtractManual recovers metadata and structured fields from pasted posting text.
func (s *Screener) ExtractManual(ctx context.Context, rawText string) ManualExtraction {
	text, err := s.client.GenerateJSON(ctx, llm.Request{
		System:      prompts.Screening(prompts.KeyManualFullExtraction),
		Input:       s.truncate(rawText),
		Tier:        llm.TierLite,
		Temperature: ExtractionTemperature,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("manual extraction call failed")
		return failedManualExtraction(rawText, callFailure(err))
	}

	result := ParseManualExtraction(text, rawText)
	if result.Failure != nil {
		s.logger.Warn().Err(result.Failure).Msg("manual extraction response invalid")
	}
	return result
}

// Evaluate runs stages 1 to 5 on a record. It does not persist anything; a
// passed decision carries the row to store.
func (s *Screener) Evaluate(ctx context.Context, rec types.DailyRecord) Decision {
	if reason, blocked := s.CheckSeniorKeyword(rec.Title); blocked {
		return reject(OutcomeSeniorBlocked, StageSeniorKeyword, reason)
	}
	if reason, blocked := s.CheckVisaKeyword(rec.Description); blocked {
		return reject(OutcomeVisaBlocked, StageVisaKeyword, reason)
	}

	verdict := s.Classify(ctx, rec.Description)
	if err := ctx.Err(); err != nil {
		return errored(StageClassifier, err)
	}
	if verdict.Verdict.IsSenior() {
		return reject(OutcomeSeniorBlocked, StageClassifier, verdict.Verdict.SeniorReason)
	}
	if !verdict.Verdict.VisaAccepted() {
		return reject(OutcomeVisaBlocked, StageClassifier, verdict.Verdict.VisaReason)
	}

	match := s.Score(ctx, rec.Description)
	if err := ctx.Err(); err != nil {
		return errored(StageMatch, err)
	}
	if !match.Passed {
		return reject(OutcomeMatchFailed, StageMatch, "overall "+match.Overall)
	}

	extracted := s.Extract(ctx, rec.Description)
	if err := ctx.Err(); err != nil {
		return errored(StageExtract, err)
	}

	return Decision{
		Outcome: OutcomePassed,
		Stage:   StageExtract,
		Reason:  "overall " + match.Overall,
		Record: &types.ScreenedRecord{
			MasterRecord:     rec.MasterRecord,
			StructuredFields: extracted.Fields,
			MatchFields:      match.Fields,
			VisaAnalysis:     SingleLineNote(verdict.Verdict.VisaReason),
		},
	}
}

// SingleLineNote strips line breaks from a classifier reason.
func SingleLineNote(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", "")
}

// truncate keeps the first MaxDescriptionLength characters of a description.
func (s *Screener) truncate(text string) string {
	limit := s.opts.MaxDescriptionLength
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// ResultWriter persists passed records.
type ResultWriter interface {
	Append(types.ScreenedRecord) error
}

// Counts tallies funnel outcomes for one run.
type Counts struct {
	Passed        int
	SeniorBlocked int
	VisaBlocked   int
	MatchFailed   int
	Skipped       int
	Errored       int
}

// Add counts one outcome.
func (c *Counts) Add(o Outcome) {
	switch o {
	case OutcomePassed:
		c.Passed++
	case OutcomeSeniorBlocked:
		c.SeniorBlocked++
	case OutcomeVisaBlocked:
		c.VisaBlocked++
	case OutcomeMatchFailed:
		c.MatchFailed++
	case OutcomeSkipped:
		c.Skipped++
	case OutcomeErrored:
		c.Errored++
	}
}

// Screened is the number of records that reached a verdict.
func (c Counts) Screened() int {
	return c.Passed + c.SeniorBlocked + c.VisaBlocked + c.MatchFailed
}

// Funnel screens records against a result store. A URL already in the store,
// or persisted earlier by this funnel, is skipped before stage 1.
type Funnel struct {
	screener *Screener
	results  ResultWriter
	seen     map[string]bool
	counts   Counts
	logger   zerolog.Logger
}

// NewFunnel creates a funnel. existing holds the URLs already in the result store.
func NewFunnel(screener *Screener, results ResultWriter, existing map[string]bool, logger zerolog.Logger) *Funnel {
	seen := make(map[string]bool, len(existing))
	for u := range existing {
		seen[u] = true
	}
	return &Funnel{screener: screener, results: results, seen: seen, logger: logger}
}

// Process screens one record and persists it when it passes. A passed record
// is counted only after the write succeeds.
func (f *Funnel) Process(ctx context.Context, rec types.DailyRecord) Decision {
	d := f.process(ctx, rec)
	f.counts.Add(d.Outcome)

	event := f.logger.Debug()
	if d.Outcome == OutcomeErrored {
		event = f.logger.Error().Err(d.Err)
	}
	event.Str("title", rec.Title).
		Str("company", rec.Company).
		Str("stage", string(d.Stage)).
		Str("outcome", string(d.Outcome)).
		Str("reason", d.Reason).
		Msg("screened")
	return d
}

func (f *Funnel) process(ctx context.Context, rec types.DailyRecord) Decision {
	if err := ctx.Err(); err != nil {
		return errored(StageGuard, err)
	}

	url := strings.TrimSpace(rec.URL)
	if url != "" && f.seen[url] {
		return reject(OutcomeSkipped, StageGuard, "already in result store")
	}
	if strings.TrimSpace(rec.Description) == "" {
		return reject(OutcomeSkipped, StageGuard, "empty description")
	}

	d := f.screener.Evaluate(ctx, rec)
	if d.Outcome != OutcomePassed {
		return d
	}

	if err := f.results.Append(*d.Record); err != nil {
		return errored(StagePersist, fmt.Errorf("failed to persist screened record: %w", err))
	}
	if url != "" {
		f.seen[url] = true
	}
	return d
}

// Counts returns the outcome tally so far.
func (f *Funnel) Counts() Counts {
	return f.counts
}

// IsCancelled reports whether a decision was cut short by its context.
func IsCancelled(d Decision) bool {
	return d.Outcome == OutcomeErrored &&
		(errors.Is(d.Err, context.Canceled) || errors.Is(d.Err, context.DeadlineExceeded))
}
