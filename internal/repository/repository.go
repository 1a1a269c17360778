// Package repository joins the result store with the status overlay and the
// artifact versions into the job views handed to presentation code.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/jobfunnel/internal/store"
	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how stale a GetAll result can be.
const DefaultCacheTTL = 3 * time.Second

// ErrJobNotFound is returned for identities with no result store row.
var ErrJobNotFound = errors.New("job not found")

// Job is the merged view of one screened posting.
type Job struct {
	ID           string                  `json:"id"`
	Company      string                  `json:"company"`
	Role         string                  `json:"role"`
	Location     string                  `json:"location"`
	URL          string                  `json:"url"`
	Remote       bool                    `json:"remote"`
	MatchScore   int                     `json:"match_score"`
	Tags         []string                `json:"tags"`
	Status       types.JobStatus         `json:"status"`
	Source       string                  `json:"source"`
	VisaAnalysis string                  `json:"visa_analysis"`
	Structured   types.StructuredFields  `json:"jd_structured"`
	Match        types.MatchFields       `json:"match"`
	Explanation  MatchExplanation        `json:"match_explanation"`
	Versions     []types.ArtifactVersion `json:"resume_versions"`
}

// Mirror receives mutations made through the repository, for example a
// database copy of the overlay.
type Mirror interface {
	UpdateStatus(ctx context.Context, id string, status types.JobStatus) error
	DeleteJob(ctx context.Context, id string) error
}

// Repository serves job views from a short-lived cache. Concurrent cold
// loads share one read of the stores.
type Repository struct {
	results  *store.ResultStore
	statuses *store.StatusOverlay
	versions *store.VersionStore
	mirror   Mirror
	validate *validator.Validate
	logger   zerolog.Logger
	ttl      time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	cache    []Job
	cachedAt time.Time
	gen      uint64
	group    singleflight.Group
}

// Option configures a Repository.
type Option func(*Repository)

// WithMirror forwards status changes and deletions to m.
func WithMirror(m Mirror) Option {
	return func(r *Repository) { r.mirror = m }
}

// WithClock replaces time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates a repository over the stores. A non-positive ttl uses DefaultCacheTTL.
func New(stores *store.Stores, ttl time.Duration, logger zerolog.Logger, opts ...Option) *Repository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	r := &Repository{
		results:  stores.Results,
		statuses: stores.Statuses,
		versions: stores.Versions,
		validate: validator.New(),
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetAll returns every job in result store order.
func (r *Repository) GetAll(ctx context.Context) ([]Job, error) {
	r.mu.RLock()
	if r.cache != nil && r.now().Sub(r.cachedAt) < r.ttl {
		jobs := cloneJobs(r.cache)
		r.mu.RUnlock()
		return jobs, nil
	}
	gen := r.gen
	r.mu.RUnlock()

	ch := r.group.DoChan("all-"+strconv.FormatUint(gen, 10), func() (any, error) {
		jobs, err := r.load()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if r.gen == gen {
			r.cache = jobs
			r.cachedAt = r.now()
		}
		r.mu.Unlock()
		return jobs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneJobs(res.Val.([]Job)), nil
	}
}

func (r *Repository) load() ([]Job, error) {
	records, err := r.results.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load result store: %w", err)
	}
	statuses, err := r.statuses.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load status overlay: %w", err)
	}

	jobs := make([]Job, 0, len(records))
	for _, rec := range records {
		job := toJob(rec)
		if s, ok := statuses[job.ID]; ok {
			job.Status = s
		}
		jobs = append(jobs, job)
	}
	r.logger.Debug().Int("jobs", len(jobs)).Int("statuses", len(statuses)).Msg("loaded jobs")
	return jobs, nil
}

func toJob(rec types.ScreenedRecord) Job {
	return Job{
		ID:           rec.ID(),
		Company:      rec.Company,
		Role:         rec.Title,
		Location:     rec.Location,
		URL:          rec.URL,
		Remote:       rec.IsRemote,
		MatchScore:   MatchScore(rec.OverallMatch),
		Tags:         Tags(rec.MatchFields, rec.StructuredFields),
		Status:       types.StatusNotApplied,
		Source:       rec.Source,
		VisaAnalysis: rec.VisaAnalysis,
		Structured:   rec.StructuredFields,
		Match:        rec.MatchFields,
		Explanation:  Explain(rec.MatchFields),
		Versions:     []types.ArtifactVersion{},
	}
}

// cloneJobs copies jobs deeply enough that callers cannot reach the cache.
func cloneJobs(jobs []Job) []Job {
	out := make([]Job, len(jobs))
	for i, j := range jobs {
		j.Tags = slices.Clone(j.Tags)
		j.Explanation.StrongFit = slices.Clone(j.Explanation.StrongFit)
		j.Explanation.Gaps = slices.Clone(j.Explanation.Gaps)
		j.Versions = cloneVersions(j.Versions)
		out[i] = j
	}
	return out
}

func cloneVersions(versions []types.ArtifactVersion) []types.ArtifactVersion {
	if versions == nil {
		return nil
	}
	out := make([]types.ArtifactVersion, len(versions))
	for i, v := range versions {
		if v.Bullets != nil {
			bullets := make(map[string][]string, len(v.Bullets))
			for k, b := range v.Bullets {
				bullets[k] = slices.Clone(b)
			}
			v.Bullets = bullets
		}
		out[i] = v
	}
	return out
}

// GetByID returns one job with its artifact versions attached.
func (r *Repository) GetByID(ctx context.Context, id string) (*Job, error) {
	jobs, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID != id {
			continue
		}
		job := jobs[i]
		versions, err := r.versions.List(id)
		if err != nil {
			return nil, err
		}
		if versions != nil {
			job.Versions = versions
		}
		return &job, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// Invalidate drops the cached view. In-flight loads started earlier will not
// repopulate it.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	r.cache = nil
	r.gen++
	r.mu.Unlock()
}

// UpdateStatus sets the status of a job and returns the updated view.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status types.JobStatus) (*Job, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := r.statuses.Set(id, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	r.Invalidate()

	if r.mirror != nil {
		if err := r.mirror.UpdateStatus(ctx, id, status); err != nil {
			r.logger.Warn().Err(err).Str("job_id", id).Msg("mirror status update failed")
		}
	}
	return r.GetByID(ctx, id)
}

// AddArtifactVersion attaches a generated artifact to a job.
func (r *Repository) AddArtifactVersion(ctx context.Context, id string, v types.ArtifactVersion) (*Job, error) {
	if err := r.validate.Struct(v); err != nil {
		return nil, fmt.Errorf("invalid artifact version: %w", err)
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if v.CreatedAt == "" {
		v.CreatedAt = r.now().Format(time.RFC3339)
	}
	if err := r.versions.Add(id, v); err != nil {
		return nil, fmt.Errorf("failed to add artifact version: %w", err)
	}
	r.Invalidate()
	return r.GetByID(ctx, id)
}

// DeleteJob removes a job from the result store, then its overlay entry, then
// its artifact versions. The steps are not atomic: if a later step fails the
// returned error names what was left behind.
func (r *Repository) DeleteJob(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	defer r.Invalidate()

	removed, err := r.results.RemoveID(id)
	if err != nil {
		return fmt.Errorf("failed to remove job from result store: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	if err := r.statuses.Delete(id); err != nil {
		return fmt.Errorf("job %s removed but its status and artifact versions were left behind: %w", id, err)
	}
	if err := r.versions.Delete(id); err != nil {
		return fmt.Errorf("job %s removed but its artifact versions were left behind: %w", id, err)
	}

	if r.mirror != nil {
		if err := r.mirror.DeleteJob(ctx, id); err != nil {
			r.logger.Warn().Err(err).Str("job_id", id).Msg("mirror delete failed")
		}
	}
	r.logger.Info().Str("job_id", id).Int("rows", removed).Msg("deleted job")
	return nil
}
