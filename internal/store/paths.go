// Package store owns the on-disk state of the pipeline: the master store, the
// daily batch files, the result store, the status overlay, the artifact
// versions and the writer lock. Everything lives under one data directory.
package store

import "path/filepath"

// File names relative to the data directory.
const (
	MasterFile   = "jobs_master.csv"
	DailyDirName = "daily"
	ResultsFile  = "good_jobs.csv"
	StatusFile   = "job_statuses.json"
	VersionsFile = "resume_versions.json"
	StatsFile    = "scrape_stats.json"
	LockFile     = ".jobfunnel.lock"
)

// Layout resolves file locations inside a data directory.
type Layout struct {
	DataDir string
}

// Master is the master store path.
func (l Layout) Master() string { return filepath.Join(l.DataDir, MasterFile) }

// DailyDir holds the daily batch files and the result store.
func (l Layout) DailyDir() string { return filepath.Join(l.DataDir, DailyDirName) }

// Results is the result store path.
func (l Layout) Results() string { return filepath.Join(l.DailyDir(), ResultsFile) }

// Statuses is the status overlay path.
func (l Layout) Statuses() string { return filepath.Join(l.DailyDir(), StatusFile) }

// Versions is the artifact versions path.
func (l Layout) Versions() string { return filepath.Join(l.DailyDir(), VersionsFile) }

// Stats is the statistics ledger path.
func (l Layout) Stats() string { return filepath.Join(l.DataDir, StatsFile) }

// Lock is the writer lock path.
func (l Layout) Lock() string { return filepath.Join(l.DataDir, LockFile) }
