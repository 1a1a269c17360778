// Package stats keeps the statistics ledger: running totals of fetched and
// screened postings, a history of runs, and the time of the last fetch.
package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobfunnel/internal/store"
	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
)

// Event types in the ledger history.
const (
	EventFetch     = "fetch"
	EventScreening = "screening"
)

// Event is one history entry. Entries written by older versions have no ID.
type Event struct {
	ID            string `json:"id,omitempty"`
	Timestamp     string `json:"timestamp"`
	Type          string `json:"type"`
	JobsFetched   int    `json:"jobs_fetched"`
	VisaBlocked   int    `json:"visa_blocked"`
	SeniorBlocked int    `json:"senior_blocked"`
	MatchFailed   int    `json:"match_failed"`
	Passed        int    `json:"passed"`
}

// Ledger is the persisted statistics document.
type Ledger struct {
	LastFetchTime        *string `json:"last_fetch_time"`
	TotalFetched         int     `json:"total_fetched"`
	TotalPassedScreening int     `json:"total_passed_screening"`
	TotalVisaBlocked     int     `json:"total_visa_blocked"`
	TotalSeniorBlocked   int     `json:"total_senior_blocked"`
	TotalMatchFailed     int     `json:"total_match_failed"`
	History              []Event `json:"history"`
}

// StatusCounter counts overlay entries with a status.
type StatusCounter interface {
	Count(status types.JobStatus) (int, error)
}

// Tracker reads and updates the ledger file. Every update is a full
// load-modify-save with an atomic replace.
type Tracker struct {
	path     string
	statuses StatusCounter
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
	mu       sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator replaces the event id generator.
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// NewTracker opens the ledger at path. statuses may be nil, in which case the
// applied count is always zero.
func NewTracker(path string, statuses StatusCounter, logger zerolog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		path:     path,
		statuses: statuses,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load returns the ledger, or an empty one when the file does not exist.
func (t *Tracker) Load() (*Ledger, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load()
}

func (t *Tracker) load() (*Ledger, error) {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Ledger{History: []Event{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stats ledger: %w", err)
	}

	var ledger Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("failed to parse stats ledger %s: %w", t.path, err)
	}
	if ledger.History == nil {
		ledger.History = []Event{}
	}
	return &ledger, nil
}

func (t *Tracker) save(ledger *Ledger) error {
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stats ledger: %w", err)
	}
	if err := store.WriteFileAtomic(t.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save stats ledger: %w", err)
	}
	return nil
}

func (t *Tracker) update(fn func(l *Ledger, now string)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ledger, err := t.load()
	if err != nil {
		return err
	}
	fn(ledger, t.now().Format(time.RFC3339))
	return t.save(ledger)
}

// RecordFetch adds count fetched postings and marks now as the last fetch.
func (t *Tracker) RecordFetch(count int) error {
	err := t.update(func(l *Ledger, now string) {
		l.LastFetchTime = &now
		l.TotalFetched += count
		l.History = append(l.History, Event{
			ID:          t.newID(),
			Timestamp:   now,
			Type:        EventFetch,
			JobsFetched: count,
		})
	})
	if err == nil {
		t.logger.Debug().Int("jobs_fetched", count).Msg("recorded fetch")
	}
	return err
}

// RecordScreening adds the outcome counts of one screening run.
func (t *Tracker) RecordScreening(visaBlocked, seniorBlocked, matchFailed, passed int) error {
	return t.update(func(l *Ledger, now string) {
		l.TotalVisaBlocked += visaBlocked
		l.TotalSeniorBlocked += seniorBlocked
		l.TotalMatchFailed += matchFailed
		l.TotalPassedScreening += passed
		l.History = append(l.History, Event{
			ID:            t.newID(),
			Timestamp:     now,
			Type:          EventScreening,
			VisaBlocked:   visaBlocked,
			SeniorBlocked: seniorBlocked,
			MatchFailed:   matchFailed,
			Passed:        passed,
		})
	})
}

// DaysSinceLastFetch returns the time since the last fetch in whole 24-hour
// periods, rounded up and clamped to [1, maxDays]. It returns nil when no fetch
// has been recorded or the recorded time cannot be read.
func (t *Tracker) DaysSinceLastFetch(maxDays int) (*int, error) {
	ledger, err := t.Load()
	if err != nil {
		return nil, err
	}
	if ledger.LastFetchTime == nil || *ledger.LastFetchTime == "" {
		return nil, nil
	}

	last, err := ParseTimestamp(*ledger.LastFetchTime)
	if err != nil {
		t.logger.Warn().Err(err).Msg("could not read last fetch time")
		return nil, nil
	}

	days := LookbackDays(t.now().Sub(last), maxDays)
	return &days, nil
}

// LookbackDays converts an elapsed duration into a fetch window in days.
func LookbackDays(elapsed time.Duration, maxDays int) int {
	days := int(math.Ceil(elapsed.Hours() / 24))
	if days > maxDays {
		days = maxDays
	}
	if days < 1 {
		days = 1
	}
	return days
}

// AppliedCount counts overlay entries with the applied status.
func (t *Tracker) AppliedCount() (int, error) {
	if t.statuses == nil {
		return 0, nil
	}
	return t.statuses.Count(types.StatusApplied)
}

var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp reads RFC 3339 timestamps and the zone-less ISO timestamps
// written by older versions, which are taken as local time.
func ParseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range legacyLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
