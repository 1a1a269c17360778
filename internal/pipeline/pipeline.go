// Package pipeline wires sources, stores, the screening funnel and the
// statistics ledger into the fetch, screen and manual-add runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/jobfunnel/internal/fetch"
	"github.com/jonathan/jobfunnel/internal/screening"
	"github.com/jonathan/jobfunnel/internal/stats"
	"github.com/jonathan/jobfunnel/internal/store"
	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
)

// Progress steps.
const (
	StepFetch    = "fetch"
	StepDedup    = "dedup"
	StepScreen   = "screen"
	StepManual   = "manual"
	StepComplete = "complete"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// Mirror receives every row written to the result store.
type Mirror interface {
	InsertScreened(ctx context.Context, rec types.ScreenedRecord) (bool, error)
}

// Search describes the queries of a fetch run.
type Search struct {
	Locations       []string
	Terms           []string
	ResultsPerQuery int
	Format          fetch.DescriptionFormat
	MaxLookbackDays int
}

// Pipeline runs fetch and screening against one data directory. It is not
// safe for concurrent runs; the writer lock keeps other processes out.
type Pipeline struct {
	stores     *store.Stores
	tracker    *stats.Tracker
	sources    []fetch.Source
	screener   *screening.Screener
	search     Search
	lockTTL    time.Duration
	mirror     Mirror
	render     fetch.Renderer
	httpClient fetch.Doer
	now        func() time.Time
	onProgress ProgressCallback
	logger     zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSources sets the job boards searched by Fetch.
func WithSources(sources ...fetch.Source) Option {
	return func(p *Pipeline) { p.sources = sources }
}

// WithScreener sets the screener used by Screen and the manual adds.
func WithScreener(s *screening.Screener) Option {
	return func(p *Pipeline) { p.screener = s }
}

// WithSearch sets the fetch queries.
func WithSearch(s Search) Option {
	return func(p *Pipeline) { p.search = s }
}

// WithLockTTL sets how old a lock file must be before it is taken over.
func WithLockTTL(ttl time.Duration) Option {
	return func(p *Pipeline) { p.lockTTL = ttl }
}

// WithMirror copies result rows to m.
func WithMirror(m Mirror) Option {
	return func(p *Pipeline) { p.mirror = m }
}

// WithPageFetcher sets the HTTP client and optional browser renderer used by AddFromURL.
func WithPageFetcher(client fetch.Doer, render fetch.Renderer) Option {
	return func(p *Pipeline) {
		p.httpClient = client
		p.render = render
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithProgress registers a progress callback.
func WithProgress(cb ProgressCallback) Option {
	return func(p *Pipeline) { p.onProgress = cb }
}

// DefaultLockTTL is used when no lock TTL is configured.
const DefaultLockTTL = 2 * time.Hour

// New creates a pipeline over stores, recording run statistics in tracker.
func New(stores *store.Stores, tracker *stats.Tracker, logger zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		stores:  stores,
		tracker: tracker,
		lockTTL: DefaultLockTTL,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// emitProgress calls the progress callback if configured
func (p *Pipeline) emitProgress(step, message string, content any) {
	if p.onProgress != nil {
		p.onProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// withLock runs fn while holding the writer lock of the data directory.
func (p *Pipeline) withLock(fn func() error) (err error) {
	lock, err := p.stores.Lock(p.lockTTL)
	if err != nil {
		if errors.Is(err, store.ErrLocked) {
			return fmt.Errorf("another jobfunnel process is writing to %s: %w", p.stores.Layout.DataDir, err)
		}
		return err
	}
	defer func() {
		if relErr := lock.Release(); relErr != nil && err == nil {
			err = relErr
		}
	}()
	return fn()
}

// mirrorRecord copies rec to the mirror. Failures are logged; the CSV store
// stays authoritative.
func (p *Pipeline) mirrorRecord(ctx context.Context, rec types.ScreenedRecord) {
	if p.mirror == nil {
		return
	}
	if _, err := p.mirror.InsertScreened(ctx, rec); err != nil {
		p.logger.Warn().Err(err).Str("job_id", rec.ID()).Msg("failed to mirror screened job")
	}
}

// resultWriter appends to the result store and then to the mirror.
type resultWriter struct {
	ctx context.Context
	p   *Pipeline
}

func (w resultWriter) Append(rec types.ScreenedRecord) error {
	if err := w.p.stores.Results.Append(rec); err != nil {
		return err
	}
	w.p.mirrorRecord(w.ctx, rec)
	return nil
}

func (p *Pipeline) requireScreener() error {
	if p.screener == nil {
		return errors.New("pipeline has no screener configured")
	}
	return nil
}
