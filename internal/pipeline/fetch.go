package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/jobfunnel/internal/dedup"
	"github.com/jonathan/jobfunnel/internal/fetch"
	"github.com/jonathan/jobfunnel/internal/ingestion"
	"github.com/jonathan/jobfunnel/internal/types"
)

// FetchOptions controls one fetch run.
type FetchOptions struct {
	// Days is the lookback window. Zero derives it from the last fetch.
	Days int
}

// FetchResult summarizes a fetch run.
type FetchResult struct {
	Days          int
	Queries       int
	FailedQueries int
	Raw           int
	// Unique counts normalized postings after in-batch dedup.
	Unique     int
	Dropped    int
	New        int
	MasterSize int
	FirstRun   bool
	DailyPath  string
}

// Fetch searches every source for every location and term, keeps the postings
// not already in the master store, writes them to today's batch file and
// extends the master store.
func (p *Pipeline) Fetch(ctx context.Context, opts FetchOptions) (*FetchResult, error) {
	var result *FetchResult
	err := p.withLock(func() error {
		var err error
		result, err = p.fetch(ctx, opts)
		return err
	})
	return result, err
}

// LookbackDays resolves the lookback window of a fetch: an explicit value, or
// the days since the last fetch clamped to the configured maximum, or 1 when
// nothing was fetched yet.
func (p *Pipeline) LookbackDays(explicit int) (int, error) {
	if explicit > 0 {
		return explicit, nil
	}
	maxDays := p.search.MaxLookbackDays
	if maxDays < 1 {
		maxDays = 1
	}
	days, err := p.tracker.DaysSinceLastFetch(maxDays)
	if err != nil {
		return 0, fmt.Errorf("failed to compute lookback: %w", err)
	}
	if days == nil {
		return 1, nil
	}
	return *days, nil
}

func (p *Pipeline) fetch(ctx context.Context, opts FetchOptions) (*FetchResult, error) {
	days, err := p.LookbackDays(opts.Days)
	if err != nil {
		return nil, err
	}
	result := &FetchResult{Days: days}
	p.logger.Info().Int("days", days).Int("sources", len(p.sources)).Msg("starting fetch")

	raws, err := p.runQueries(ctx, days, result)
	if err != nil {
		return nil, err
	}
	result.Raw = len(raws)

	batch := ingestion.Normalize(raws)
	result.Unique = len(batch.Records)
	result.Dropped = batch.Dropped
	p.emitProgress(StepFetch, fmt.Sprintf("Fetched %d unique postings", result.Unique), result)

	// The fetch happened even when nothing came back, so the lookback restarts.
	if err := p.tracker.RecordFetch(result.Unique); err != nil {
		return nil, fmt.Errorf("failed to record fetch: %w", err)
	}
	if result.Unique == 0 {
		p.logger.Info().Msg("nothing fetched")
		return result, nil
	}

	history, exists, err := p.stores.Master.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load master store: %w", err)
	}
	result.FirstRun = !exists

	fresh := dedup.Filter(batch.Records, history, exists)
	result.New = len(fresh)
	result.MasterSize = len(history)
	p.emitProgress(StepDedup, fmt.Sprintf("%d of %d postings are new", result.New, result.Unique), nil)
	if len(fresh) == 0 {
		p.logger.Info().Msg("no new postings, all already in master store")
		return result, nil
	}

	result.DailyPath, err = p.stores.Daily.Append(p.now(), fresh)
	if err != nil {
		return nil, err
	}

	additions := dedup.Merge(history, masterRecords(fresh))
	if err := p.stores.Master.Append(additions); err != nil {
		return nil, err
	}
	result.MasterSize += len(additions)

	p.logger.Info().
		Int("new", result.New).
		Str("daily", result.DailyPath).
		Int("master_size", result.MasterSize).
		Msg("fetch complete")
	return result, nil
}

// runQueries runs every query in order. A failing query is logged and contributes
// nothing; only cancellation stops the loop.
func (p *Pipeline) runQueries(ctx context.Context, days int, result *FetchResult) ([]types.RawPosting, error) {
	var raws []types.RawPosting
	for _, location := range p.search.Locations {
		for _, term := range p.search.Terms {
			for _, source := range p.sources {
				if err := ctx.Err(); err != nil {
					return nil, err
				}

				result.Queries++
				q := fetch.Query{
					Term:     term,
					Location: location,
					Limit:    p.search.ResultsPerQuery,
					HoursOld: 24 * days,
					Format:   p.search.Format,
				}
				logger := p.logger.With().Str("source", source.Name()).Str("location", location).Str("term", term).Logger()

				found, err := source.Search(ctx, q)
				if err != nil {
					if ctx.Err() != nil {
						return nil, ctx.Err()
					}
					result.FailedQueries++
					logger.Error().Err(err).Msg("query failed")
					continue
				}
				logger.Debug().Int("postings", len(found)).Msg("query done")
				for i := range found {
					found[i].SearchCity = location
					found[i].SearchTerm = term
					if found[i].Source == "" {
						found[i].Source = source.Name()
					}
				}
				raws = append(raws, found...)
			}
		}
	}
	return raws, nil
}

func masterRecords(records []types.DailyRecord) []types.MasterRecord {
	out := make([]types.MasterRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r.MasterRecord)
	}
	return out
}
