package store

import (
	"time"

	"github.com/rs/zerolog"
)

// Stores bundles every store under one data directory.
type Stores struct {
	Layout   Layout
	Master   *MasterStore
	Daily    *DailyStore
	Results  *ResultStore
	Statuses *StatusOverlay
	Versions *VersionStore
}

// Open wires the stores for dataDir. Nothing is created on disk until the
// first write.
func Open(dataDir string, logger zerolog.Logger) *Stores {
	layout := Layout{DataDir: dataDir}
	return &Stores{
		Layout:   layout,
		Master:   NewMasterStore(layout.Master(), logger),
		Daily:    NewDailyStore(layout.DailyDir(), logger),
		Results:  NewResultStore(layout.Results(), logger),
		Statuses: NewStatusOverlay(layout.Statuses(), logger),
		Versions: NewVersionStore(layout.Versions()),
	}
}

// Lock takes the writer lock of the data directory.
func (s *Stores) Lock(ttl time.Duration) (*Lock, error) {
	return AcquireLock(s.Layout.Lock(), ttl)
}
