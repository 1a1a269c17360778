//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(ctx))

	_, _ = db.pool.Exec(ctx, "DELETE FROM job_statuses WHERE job_id IN (SELECT job_id FROM screened_jobs WHERE job_url LIKE 'https://test.example.com/%')")
	_, _ = db.pool.Exec(ctx, "DELETE FROM screened_jobs WHERE job_url LIKE 'https://test.example.com/%'")
	return db
}

func testRecord(path string) types.ScreenedRecord {
	return types.ScreenedRecord{
		MasterRecord:     types.MasterRecord{Title: "Backend Engineer", Company: "Test Corp", URL: "https://test.example.com/" + path},
		StructuredFields: types.DefaultStructuredFields(),
		MatchFields:      types.MatchFields{OverallMatch: "75"},
	}
}

func TestIntegration_MirrorLifecycle(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	rec := testRecord("lifecycle")

	inserted, err := db.InsertScreened(ctx, rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = db.InsertScreened(ctx, rec)
	require.NoError(t, err)
	assert.False(t, inserted, "second insert is a no-op")

	job, err := db.GetJob(ctx, rec.ID())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, types.StatusNotApplied, job.Status)
	assert.Equal(t, "75", job.OverallMatch)

	require.NoError(t, db.UpdateStatus(ctx, rec.ID(), types.StatusApplied))
	require.NoError(t, db.UpdateStatus(ctx, rec.ID(), types.StatusStarred))
	job, err = db.GetJob(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, types.StatusStarred, job.Status)

	require.NoError(t, db.DeleteJob(ctx, rec.ID()))
	job, err = db.GetJob(ctx, rec.ID())
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestIntegration_InsertScreenedBatch(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	records := []types.ScreenedRecord{testRecord("batch-1"), testRecord("batch-2")}
	n, err := db.InsertScreenedBatch(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = db.InsertScreenedBatch(ctx, append(records, testRecord("batch-3")))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
