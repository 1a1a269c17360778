package store

import (
	"fmt"

	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
)

// MasterStore is the append-only ledger of every posting ever accepted from a fetch.
type MasterStore struct {
	path   string
	logger zerolog.Logger
}

// NewMasterStore opens the master store at path. The file is created on first append.
func NewMasterStore(path string, logger zerolog.Logger) *MasterStore {
	return &MasterStore{path: path, logger: logger}
}

// Path returns the file location.
func (s *MasterStore) Path() string { return s.path }

// Exists reports whether the master file has been created.
func (s *MasterStore) Exists() bool {
	return fileExists(s.path)
}

// Load returns every readable record and whether the store exists.
func (s *MasterStore) Load() ([]types.MasterRecord, bool, error) {
	t, rowErrs, err := readTable(s.path)
	if err != nil {
		return nil, false, err
	}
	if t == nil {
		return nil, false, nil
	}
	logRowErrors(s.logger, rowErrs)

	records := make([]types.MasterRecord, 0, len(t.rows))
	for _, r := range t.rows {
		records = append(records, masterFromRow(r))
	}
	return records, true, nil
}

// Append adds records to the end of the store.
func (s *MasterStore) Append(records []types.MasterRecord) error {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, masterToRow(r))
	}
	if err := appendRows(s.path, types.MasterColumns, rows, ""); err != nil {
		return fmt.Errorf("failed to append to master store: %w", err)
	}
	return nil
}

func logRowErrors(logger zerolog.Logger, rowErrs []*RowError) {
	for _, e := range rowErrs {
		logger.Warn().Str("file", e.Path).Int("line", e.Line).Err(e.Err).Msg("skipping unreadable row")
	}
}
