package store

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RowError describes a CSV row that could not be read. The row is skipped and
// the rest of the file is processed.
type RowError struct {
	Path string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// row is one CSV record keyed by header column.
type row struct {
	line   int
	fields map[string]string
	raw    []string
}

// get returns the value of a column and whether the column exists in the file.
func (r row) get(col string) (string, bool) {
	v, ok := r.fields[col]
	return v, ok
}

// table is a whole CSV file.
type table struct {
	header []string
	rows   []row
}

func newCSVReader(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)
	if first, _ := br.Peek(len(utf8BOM)); bytes.Equal(first, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// readTable reads a CSV file with a header row. A missing file returns a nil
// table. Malformed rows and rows with more fields than the header are returned
// as RowErrors; shorter rows are padded with empty values.
func readTable(path string) (*table, []*RowError, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cr := newCSVReader(f)
	t := &table{}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return t, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	t.header = header

	var rowErrs []*RowError
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrs = append(rowErrs, &RowError{Path: path, Line: parseErr.StartLine, Err: parseErr.Err})
				continue
			}
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		line, _ := cr.FieldPos(0)
		if len(record) > len(header) {
			rowErrs = append(rowErrs, &RowError{
				Path: path,
				Line: line,
				Err:  fmt.Errorf("expected %d fields, got %d", len(header), len(record)),
			})
			continue
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = record[i]
			} else {
				fields[col] = ""
			}
		}
		t.rows = append(t.rows, row{line: line, fields: fields, raw: record})
	}
	return t, rowErrs, nil
}

// readHeader returns the header of a CSV file, or nil when the file is missing or empty.
func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	header, err := newCSVReader(f).Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return header, nil
}

// appendRows appends rows to a CSV file. A missing or empty file is started with
// header. An existing file keeps its own header: each row is aligned to it,
// columns the row lacks get fill and columns the file lacks are dropped.
func appendRows(path string, header []string, rows []map[string]string, fill string) error {
	if len(rows) == 0 {
		return nil
	}

	columns, err := readHeader(path)
	if err != nil {
		return err
	}
	writeHeader := columns == nil
	if writeHeader {
		columns = header
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", path, err)
	}

	bw := bufio.NewWriter(f)
	w := csv.NewWriter(bw)
	if writeHeader {
		if err := w.Write(columns); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write header to %s: %w", path, err)
		}
	}
	record := make([]string, len(columns))
	for _, r := range rows {
		for i, col := range columns {
			v, ok := r[col]
			if !ok {
				v = fill
			}
			record[i] = v
		}
		if err := w.Write(record); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	return f.Close()
}

// encodeTable renders a header and raw records as CSV.
func encodeTable(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
