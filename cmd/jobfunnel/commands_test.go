package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobfunnel/internal/types"
)

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"fetch", "screen", "run", "stats", "jobs", "add", "watch"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestStatsCommand_EmptyDataDir(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "STATISTICS")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "Pass rate:      0.0%")
}

func TestJobsList_SortedByScore(t *testing.T) {
	env := newTestEnv(t)
	env.addJob(t, "Backend Engineer", "Acme", "72")
	env.addJob(t, "Platform Engineer", "Globex", "91")

	out, err := env.execute(t, "jobs", "list")
	require.NoError(t, err)

	globex := strings.Index(out, "Globex")
	acme := strings.Index(out, "Acme")
	require.NotEqual(t, -1, globex)
	require.NotEqual(t, -1, acme)
	assert.Less(t, globex, acme)
}

func TestJobsList_Empty(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute(t, "jobs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No jobs.")
}

func TestJobsList_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute(t, "jobs", "list", "--status", "ghosted")
	require.Error(t, err)
}

func TestJobsStatus_UpdatesOverlay(t *testing.T) {
	env := newTestEnv(t)
	id := env.addJob(t, "Backend Engineer", "Acme", "80")

	out, err := env.execute(t, "jobs", "status", id, "applied")
	require.NoError(t, err)
	assert.Contains(t, out, "is now applied")

	status, err := env.stores.Statuses.Get(id)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApplied, status)

	out, err = env.execute(t, "jobs", "list", "--status", "applied")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")

	out, err = env.execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied:        1")
}

func TestJobsStatus_UnknownJob(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute(t, "jobs", "status", "deadbeef", "applied")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestJobsStatus_RefusedWhileLocked(t *testing.T) {
	env := newTestEnv(t)
	id := env.addJob(t, "Backend Engineer", "Acme", "80")

	lock, err := env.stores.Lock(0)
	require.NoError(t, err)
	defer func() { _ = lock.Release() }()

	_, err = env.execute(t, "jobs", "status", id, "applied")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another jobfunnel process")
}

func TestJobsShow(t *testing.T) {
	env := newTestEnv(t)
	id := env.addJob(t, "Backend Engineer", "Acme", "80")

	out, err := env.execute(t, "jobs", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "BACKEND ENGINEER")
	assert.Contains(t, out, "Score:    80")
}

func TestJobsAddVersion_ThenDelete(t *testing.T) {
	env := newTestEnv(t)
	id := env.addJob(t, "Backend Engineer", "Acme", "80")

	out, err := env.execute(t, "jobs", "add-version", id, "--pdf", "out/acme.pdf", "--version-id", "v1")
	require.NoError(t, err)
	assert.Contains(t, out, "Added version v1")

	versions, err := env.stores.Versions.List(id)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "out/acme.pdf", versions[0].PDFPath)

	_, err = env.execute(t, "jobs", "delete", id)
	require.NoError(t, err)

	records, err := env.stores.Results.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
	versions, err = env.stores.Versions.List(id)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestJobsAddVersion_RequiresPDF(t *testing.T) {
	env := newTestEnv(t)
	id := env.addJob(t, "Backend Engineer", "Acme", "80")

	_, err := env.execute(t, "jobs", "add-version", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
}

func TestAddCommand_RequiresInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute(t, "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is required")
}

func TestLoadConfig_MissingDefaultFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	resetFlags(rootCmd)

	cfg, err := loadConfig(&cobra.Command{})
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.Storage.DataDir)
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	env := newTestEnv(t)
	missing := filepath.Join(filepath.Dir(env.configPath), "other.toml")

	_, err := env.execute(t, "--config", missing, "stats")
	require.Error(t, err)
	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr))
}
