package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jonathan/jobfunnel/internal/screening"
)

// FileResult is the screening tally of one daily batch file.
type FileResult struct {
	Path    string
	Records int
	Counts  screening.Counts
}

// ScreenResult summarizes a screening run.
type ScreenResult struct {
	Files     []FileResult
	Counts    screening.Counts
	Cancelled bool
}

// Screen runs every daily batch file, oldest first, through the funnel.
// Passed records are appended to the result store one at a time, so an
// interrupted run keeps everything screened before the interruption.
func (p *Pipeline) Screen(ctx context.Context) (*ScreenResult, error) {
	var result *ScreenResult
	err := p.withLock(func() error {
		var err error
		result, err = p.screen(ctx)
		return err
	})
	return result, err
}

func (p *Pipeline) screen(ctx context.Context) (*ScreenResult, error) {
	if err := p.requireScreener(); err != nil {
		return nil, err
	}

	files, err := p.stores.Daily.List()
	if err != nil {
		return nil, err
	}
	existing, err := p.stores.Results.URLs()
	if err != nil {
		return nil, fmt.Errorf("failed to read result store: %w", err)
	}
	p.logger.Info().Int("files", len(files)).Int("already_screened", len(existing)).Msg("starting screening")

	funnel := screening.NewFunnel(p.screener, resultWriter{ctx: ctx, p: p}, existing, p.logger)
	result := &ScreenResult{}

	for _, path := range files {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}
		records, err := p.stores.Daily.Load(path)
		if err != nil {
			p.logger.Error().Err(err).Str("file", path).Msg("skipping unreadable daily batch")
			continue
		}

		p.emitProgress(StepScreen, fmt.Sprintf("Screening %s (%d postings)", filepath.Base(path), len(records)), nil)
		before := funnel.Counts()
		for _, rec := range records {
			d := funnel.Process(ctx, rec)
			if screening.IsCancelled(d) {
				result.Cancelled = true
				break
			}
		}
		result.Files = append(result.Files, FileResult{
			Path:    path,
			Records: len(records),
			Counts:  diffCounts(funnel.Counts(), before),
		})
		if result.Cancelled {
			break
		}
	}

	result.Counts = funnel.Counts()
	c := result.Counts
	if err := p.tracker.RecordScreening(c.VisaBlocked, c.SeniorBlocked, c.MatchFailed, c.Passed); err != nil {
		return result, fmt.Errorf("failed to record screening: %w", err)
	}

	p.emitProgress(StepComplete, fmt.Sprintf("Screening complete: %d passed", c.Passed), result.Counts)
	p.logger.Info().
		Int("passed", c.Passed).
		Int("visa_blocked", c.VisaBlocked).
		Int("senior_blocked", c.SeniorBlocked).
		Int("match_failed", c.MatchFailed).
		Int("skipped", c.Skipped).
		Int("errored", c.Errored).
		Bool("cancelled", result.Cancelled).
		Msg("screening complete")

	if result.Cancelled {
		return result, ctx.Err()
	}
	return result, nil
}

func diffCounts(after, before screening.Counts) screening.Counts {
	return screening.Counts{
		Passed:        after.Passed - before.Passed,
		SeniorBlocked: after.SeniorBlocked - before.SeniorBlocked,
		VisaBlocked:   after.VisaBlocked - before.VisaBlocked,
		MatchFailed:   after.MatchFailed - before.MatchFailed,
		Skipped:       after.Skipped - before.Skipped,
		Errored:       after.Errored - before.Errored,
	}
}

// RunResult is the outcome of a fetch followed by a screening run.
type RunResult struct {
	Fetch  *FetchResult
	Screen *ScreenResult
}

// Run fetches and then screens under a single lock.
func (p *Pipeline) Run(ctx context.Context, opts FetchOptions) (*RunResult, error) {
	if err := p.requireScreener(); err != nil {
		return nil, err
	}
	result := &RunResult{}
	err := p.withLock(func() error {
		var err error
		if result.Fetch, err = p.fetch(ctx, opts); err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		if result.Screen, err = p.screen(ctx); err != nil {
			return fmt.Errorf("screening failed: %w", err)
		}
		return nil
	})
	return result, err
}
