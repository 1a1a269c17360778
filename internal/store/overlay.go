package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
)

// StatusOverlay maps job identities to their human-assigned status. It is kept
// apart from the result store so that re-screening never touches it. Every
// operation re-reads the file, since other processes may have written it.
type StatusOverlay struct {
	path   string
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewStatusOverlay opens the overlay file at path.
func NewStatusOverlay(path string, logger zerolog.Logger) *StatusOverlay {
	return &StatusOverlay{path: path, logger: logger}
}

// Load returns all entries. Entries with an unknown status are skipped.
func (o *StatusOverlay) Load() (map[string]types.JobStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.load()
}

func (o *StatusOverlay) load() (map[string]types.JobStatus, error) {
	raw, err := o.loadRaw()
	if err != nil {
		return nil, err
	}
	statuses := make(map[string]types.JobStatus, len(raw))
	for id, value := range raw {
		status, err := types.ParseStatus(value)
		if err != nil {
			o.logger.Warn().Str("job_id", id).Str("status", value).Msg("ignoring unknown status")
			continue
		}
		statuses[id] = status
	}
	return statuses, nil
}

// loadRaw returns the file contents unvalidated, so that writes preserve
// entries this version does not understand.
func (o *StatusOverlay) loadRaw() (map[string]string, error) {
	data, err := readFileIfExists(o.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read status overlay: %w", err)
	}
	raw := make(map[string]string)
	if len(data) == 0 {
		return raw, nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse status overlay: %w", err)
	}
	return raw, nil
}

func (o *StatusOverlay) save(raw map[string]string) error {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode status overlay: %w", err)
	}
	return WriteFileAtomic(o.path, data, 0o644)
}

// Get returns the status of id, or not_applied when it has no entry.
func (o *StatusOverlay) Get(id string) (types.JobStatus, error) {
	statuses, err := o.Load()
	if err != nil {
		return "", err
	}
	if status, ok := statuses[id]; ok {
		return status, nil
	}
	return types.StatusNotApplied, nil
}

// Set records the status of id.
func (o *StatusOverlay) Set(id string, status types.JobStatus) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := types.ParseStatus(string(status)); err != nil {
		return err
	}
	raw, err := o.loadRaw()
	if err != nil {
		return err
	}
	raw[id] = string(status)
	return o.save(raw)
}

// Delete removes the entry of id. Deleting a missing entry is not an error.
func (o *StatusOverlay) Delete(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	raw, err := o.loadRaw()
	if err != nil {
		return err
	}
	if _, ok := raw[id]; !ok {
		return nil
	}
	delete(raw, id)
	return o.save(raw)
}

// Count returns how many entries have the given status.
func (o *StatusOverlay) Count(status types.JobStatus) (int, error) {
	statuses, err := o.Load()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, s := range statuses {
		if s == status {
			n++
		}
	}
	return n, nil
}
