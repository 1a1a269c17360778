package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
)

// DailyDateLayout is the date format in daily batch file names.
const DailyDateLayout = "2006-01-02"

var dailyFileRe = regexp.MustCompile(`^jobs_\d{4}-\d{2}-\d{2}\.csv$`)

// DailyStore manages the per-day batch files of newly fetched postings.
type DailyStore struct {
	dir    string
	logger zerolog.Logger
}

// NewDailyStore opens the daily directory.
func NewDailyStore(dir string, logger zerolog.Logger) *DailyStore {
	return &DailyStore{dir: dir, logger: logger}
}

// PathFor returns the batch file for a day.
func (s *DailyStore) PathFor(day time.Time) string {
	return filepath.Join(s.dir, "jobs_"+day.Format(DailyDateLayout)+".csv")
}

// Append adds records to the batch file of a day. A second fetch on the same
// day extends the file instead of replacing it.
func (s *DailyStore) Append(day time.Time, records []types.DailyRecord) (string, error) {
	path := s.PathFor(day)
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, dailyToRow(r))
	}
	if err := appendRows(path, types.DailyColumns, rows, ""); err != nil {
		return "", fmt.Errorf("failed to write daily batch: %w", err)
	}
	return path, nil
}

// List returns the batch files sorted by name, which is date order.
func (s *DailyStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && dailyFileRe.MatchString(e.Name()) {
			paths = append(paths, filepath.Join(s.dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads one batch file.
func (s *DailyStore) Load(path string) ([]types.DailyRecord, error) {
	t, rowErrs, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("daily batch %s not found", path)
	}
	logRowErrors(s.logger, rowErrs)

	records := make([]types.DailyRecord, 0, len(t.rows))
	for _, r := range t.rows {
		records = append(records, dailyFromRow(r))
	}
	return records, nil
}
