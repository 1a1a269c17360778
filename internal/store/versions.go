package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jonathan/jobfunnel/internal/types"
)

// VersionStore keeps the artifact versions generated for each job identity.
type VersionStore struct {
	path string
	mu   sync.Mutex
}

// NewVersionStore opens the versions file at path.
func NewVersionStore(path string) *VersionStore {
	return &VersionStore{path: path}
}

func (s *VersionStore) load() (map[string][]types.ArtifactVersion, error) {
	data, err := readFileIfExists(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact versions: %w", err)
	}
	versions := make(map[string][]types.ArtifactVersion)
	if len(data) == 0 {
		return versions, nil
	}
	if err := json.Unmarshal(data, &versions); err != nil {
		return nil, fmt.Errorf("failed to parse artifact versions: %w", err)
	}
	return versions, nil
}

func (s *VersionStore) save(versions map[string][]types.ArtifactVersion) error {
	data, err := json.MarshalIndent(versions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact versions: %w", err)
	}
	return WriteFileAtomic(s.path, data, 0o644)
}

// List returns the versions of id in the order they were added.
func (s *VersionStore) List(id string) ([]types.ArtifactVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.load()
	if err != nil {
		return nil, err
	}
	return versions[id], nil
}

// Add appends a version to id.
func (s *VersionStore) Add(id string, v types.ArtifactVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.load()
	if err != nil {
		return err
	}
	versions[id] = append(versions[id], v)
	return s.save(versions)
}

// Delete removes every version of id.
func (s *VersionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := versions[id]; !ok {
		return nil
	}
	delete(versions, id)
	return s.save(versions)
}
