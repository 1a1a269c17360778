package store

import (
	"fmt"
	"strings"

	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
)

// ResultStore is the append-only CSV of postings that passed the funnel or were
// added by hand.
type ResultStore struct {
	path   string
	logger zerolog.Logger
}

// NewResultStore opens the result store at path.
func NewResultStore(path string, logger zerolog.Logger) *ResultStore {
	return &ResultStore{path: path, logger: logger}
}

// Path returns the file location.
func (s *ResultStore) Path() string { return s.path }

// Exists reports whether the result file has been created.
func (s *ResultStore) Exists() bool {
	return fileExists(s.path)
}

// Load returns every readable row. A missing store is empty.
func (s *ResultStore) Load() ([]types.ScreenedRecord, error) {
	t, rowErrs, err := readTable(s.path)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	logRowErrors(s.logger, rowErrs)

	records := make([]types.ScreenedRecord, 0, len(t.rows))
	for _, r := range t.rows {
		records = append(records, screenedFromRow(r))
	}
	return records, nil
}

// URLs returns the set of non-empty URLs already in the store.
func (s *ResultStore) URLs() (map[string]bool, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	urls := make(map[string]bool, len(records))
	for _, r := range records {
		if u := strings.TrimSpace(r.URL); u != "" {
			urls[u] = true
		}
	}
	return urls, nil
}

// Append writes one record. When the file already exists the row follows its
// header; columns the record does not carry are written as "N/A".
func (s *ResultStore) Append(record types.ScreenedRecord) error {
	rows := []map[string]string{screenedToRow(record)}
	if err := appendRows(s.path, types.ResultColumns, rows, types.NotAvailable); err != nil {
		return fmt.Errorf("failed to append to result store: %w", err)
	}
	return nil
}

// RemoveID rewrites the store without the rows whose identity is id and returns
// how many were removed. Rows the reader skipped are not carried over.
func (s *ResultStore) RemoveID(id string) (int, error) {
	t, rowErrs, err := readTable(s.path)
	if err != nil {
		return 0, err
	}
	if t == nil {
		return 0, nil
	}
	logRowErrors(s.logger, rowErrs)

	kept := make([][]string, 0, len(t.rows))
	removed := 0
	for _, r := range t.rows {
		if screenedFromRow(r).ID() == id {
			removed++
			continue
		}
		kept = append(kept, r.raw)
	}
	if removed == 0 {
		return 0, nil
	}

	data, err := encodeTable(t.header, kept)
	if err != nil {
		return 0, fmt.Errorf("failed to encode result store: %w", err)
	}
	if err := WriteFileAtomic(s.path, data, 0o644); err != nil {
		return 0, err
	}
	return removed, nil
}
