package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/jobfunnel/internal/fetch"
	"github.com/jonathan/jobfunnel/internal/llm"
	"github.com/jonathan/jobfunnel/internal/prompts"
	"github.com/jonathan/jobfunnel/internal/screening"
	"github.com/jonathan/jobfunnel/internal/stats"
	"github.com/jonathan/jobfunnel/internal/store"
	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
)

// fakeClient answers each prompt with a canned response and counts calls.
type fakeClient struct {
	mu        sync.Mutex
	responses map[string]string
	calls     map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{responses: map[string]string{}, calls: map[string]int{}}
}

func (f *fakeClient) respond(key, text string) *fakeClient {
	f.responses[key] = text
	return f
}

func (f *fakeClient) generate(req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range []string{
		prompts.KeyCombinedVisaSenior,
		prompts.KeyMatchScreening,
		prompts.KeyStructuredExtraction,
		prompts.KeyManualFullExtraction,
	} {
		if prompts.Screening(key) == req.System {
			f.calls[key]++
			return f.responses[key], nil
		}
	}
	return "", errors.New("unexpected prompt")
}

func (f *fakeClient) GenerateContent(_ context.Context, req llm.Request) (string, error) {
	return f.generate(req)
}

func (f *fakeClient) GenerateJSON(_ context.Context, req llm.Request) (string, error) {
	text, err := f.generate(req)
	return llm.CleanJSONBlock(text), err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

const (
	acceptVerdict = "visa_status: ACCEPT\nvisa_reason: Sponsorship available\nsenior_status: NOT_SENIOR\nsenior_reason: 2+ years"
	rejectVerdict = "visa_status: REJECT\nvisa_reason: Requires clearance\nsenior_status: SENIOR\nsenior_reason: Staff level"
	strongMatch   = "Systems_Fit: 80\nRetrieval_Infra_Fit: 65\nAlgorithmic_ML_Fit: 30\nOverall: 75\nReason: Go services"
	weakMatch     = "Systems_Fit: 20\nRetrieval_Infra_Fit: 10\nAlgorithmic_ML_Fit: 10\nOverall: 40\nReason: Frontend role"
	extraction    = `{"technical_stack": ["Go", "Postgres"], "key_responsibilities": ["Build APIs"], "required_experience": "3 years", "success_metrics": "N/A", "salary_range": "$150k", "salary_is_estimated": false}`
)

func passingClient() *fakeClient {
	return newFakeClient().
		respond(prompts.KeyCombinedVisaSenior, acceptVerdict).
		respond(prompts.KeyMatchScreening, strongMatch).
		respond(prompts.KeyStructuredExtraction, extraction)
}

// fakeSource returns canned postings per query and records the queries it saw.
type fakeSource struct {
	name     string
	postings []types.RawPosting
	err      error
	queries  []fetch.Query
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Search(_ context.Context, q fetch.Query) ([]types.RawPosting, error) {
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	return append([]types.RawPosting(nil), s.postings...), nil
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingMirror struct {
	mu   sync.Mutex
	rows []types.ScreenedRecord
	err  error
}

func (m *recordingMirror) InsertScreened(_ context.Context, rec types.ScreenedRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	m.rows = append(m.rows, rec)
	return true, nil
}

type fixture struct {
	stores  *store.Stores
	tracker *stats.Tracker
	clock   *testClock
	client  *fakeClient
}

func newFixture(t *testing.T, client *fakeClient) *fixture {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	stores := store.Open(t.TempDir(), zerolog.Nop())
	tracker := stats.NewTracker(stores.Layout.Stats(), stores.Statuses, zerolog.Nop(), stats.WithClock(clock.now))
	return &fixture{stores: stores, tracker: tracker, clock: clock, client: client}
}

func (f *fixture) pipeline(opts ...Option) *Pipeline {
	base := []Option{
		WithClock(f.clock.now),
		WithSearch(Search{
			Locations:       []string{"Seattle, WA"},
			Terms:           []string{"backend engineer"},
			ResultsPerQuery: 10,
			Format:          fetch.FormatMarkdown,
			MaxLookbackDays: 14,
		}),
	}
	if f.client != nil {
		screener := screening.NewScreener(f.client, screening.Options{MatchThreshold: 70, MaxDescriptionLength: 6000}, zerolog.Nop())
		base = append(base, WithScreener(screener))
	}
	return New(f.stores, f.tracker, zerolog.Nop(), append(base, opts...)...)
}

func posting(title, company, url, description string) types.RawPosting {
	return types.RawPosting{
		Title:       title,
		Company:     company,
		Location:    "Seattle, WA",
		URL:         url,
		Description: description,
		Source:      "linkedin",
	}
}

func dailyRecord(title, company, url, description string) types.DailyRecord {
	return types.DailyRecord{
		MasterRecord: types.MasterRecord{
			Title:    title,
			Company:  company,
			Location: "Seattle, WA",
			URL:      url,
			Source:   "linkedin",
		},
		Description: description,
	}
}
