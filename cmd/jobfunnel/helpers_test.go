package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobfunnel/internal/store"
	"github.com/jonathan/jobfunnel/internal/types"
)

// testEnv is a data directory plus a config file pointing at it.
type testEnv struct {
	dataDir    string
	configPath string
	stores     *store.Stores
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	configPath := filepath.Join(dir, "jobfunnel.toml")
	cfg := fmt.Sprintf(`[search]
cities = ["Seattle, WA"]
terms = ["backend engineer"]

[storage]
data_dir = %q
`, dataDir)
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))

	return &testEnv{
		dataDir:    dataDir,
		configPath: configPath,
		stores:     store.Open(dataDir, zerolog.Nop()),
	}
}

// addJob writes a screened row and returns its identity.
func (e *testEnv) addJob(t *testing.T, title, company, overall string) string {
	t.Helper()
	rec := types.ScreenedRecord{
		MasterRecord: types.MasterRecord{
			Title:    title,
			Company:  company,
			Location: "Seattle, WA",
			URL:      "https://jobs.example.com/" + company + "/" + title,
			Source:   "linkedin",
		},
		StructuredFields: types.DefaultStructuredFields(),
		MatchFields: types.MatchFields{
			SystemsFit:        "80",
			RetrievalInfraFit: "60",
			AlgorithmicMLFit:  "40",
			OverallMatch:      overall,
			MatchReason:       "Strong distributed systems background",
		},
	}
	require.NoError(t, e.stores.Results.Append(rec))
	return rec.ID()
}

// execute runs the root command in-process with fresh flag state.
func (e *testEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
