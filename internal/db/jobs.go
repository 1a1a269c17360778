package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/jobfunnel/internal/types"
)

const insertScreenedSQL = `INSERT INTO screened_jobs (
	job_id, title, company, location, job_url, source, search_city, search_term, is_remote,
	technical_stack, key_responsibilities, required_experience, success_metrics, salary_range, salary_is_estimated,
	systems_fit, retrieval_infra_fit, algorithmic_ml_fit, overall_match, match_reason, visa_analysis
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
ON CONFLICT (job_id) DO NOTHING`

// screenedArgs lists the insert arguments in column order.
func screenedArgs(rec types.ScreenedRecord) []any {
	return []any{
		rec.ID(), rec.Title, rec.Company, rec.Location, rec.URL, rec.Source, rec.SearchCity, rec.SearchTerm, rec.IsRemote,
		rec.TechnicalStack, rec.KeyResponsibilities, rec.RequiredExperience, rec.SuccessMetrics, rec.SalaryRange, rec.SalaryIsEstimated,
		rec.SystemsFit, rec.RetrievalInfraFit, rec.AlgorithmicMLFit, rec.OverallMatch, rec.MatchReason, rec.VisaAnalysis,
	}
}

// InsertScreened mirrors a result store row. A row that is already mirrored is
// left untouched; it reports whether a row was inserted.
func (db *DB) InsertScreened(ctx context.Context, rec types.ScreenedRecord) (bool, error) {
	tag, err := db.pool.Exec(ctx, insertScreenedSQL, screenedArgs(rec)...)
	if err != nil {
		return false, fmt.Errorf("failed to mirror job %s: %w", rec.ID(), err)
	}
	return tag.RowsAffected() == 1, nil
}

// InsertScreenedBatch mirrors many rows in one round trip and returns how many were new.
func (db *DB) InsertScreenedBatch(ctx context.Context, records []types.ScreenedRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(insertScreenedSQL, screenedArgs(rec)...)
	}

	results := db.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	inserted := 0
	for range records {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to mirror jobs: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// UpdateStatus records the status of a job.
func (db *DB) UpdateStatus(ctx context.Context, id string, status types.JobStatus) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_statuses (job_id, status) VALUES ($1, $2)
		 ON CONFLICT (job_id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to mirror status of %s: %w", id, err)
	}
	return nil
}

// DeleteJob removes a job and its status.
func (db *DB) DeleteJob(ctx context.Context, id string) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM job_statuses WHERE job_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete status of %s: %w", id, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM screened_jobs WHERE job_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	return tx.Commit(ctx)
}

// MirroredJob is a row of screened_jobs joined with its status.
type MirroredJob struct {
	ID           string
	Title        string
	Company      string
	URL          string
	OverallMatch string
	Status       types.JobStatus
}

// GetJob returns a mirrored job, or nil when it is not mirrored.
func (db *DB) GetJob(ctx context.Context, id string) (*MirroredJob, error) {
	var job MirroredJob
	var status string
	err := db.pool.QueryRow(ctx,
		`SELECT j.job_id, j.title, j.company, j.job_url, j.overall_match, COALESCE(s.status, 'not_applied')
		 FROM screened_jobs j LEFT JOIN job_statuses s ON s.job_id = j.job_id
		 WHERE j.job_id = $1`,
		id,
	).Scan(&job.ID, &job.Title, &job.Company, &job.URL, &job.OverallMatch, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get mirrored job %s: %w", id, err)
	}
	job.Status = types.JobStatus(status)
	return &job, nil
}
