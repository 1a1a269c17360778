package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrLocked is returned when another writer holds a fresh lock.
var ErrLocked = errors.New("another writer is active")

// heartbeatInterval is how often a held lock's mtime is refreshed.
const heartbeatInterval = time.Minute

// Lock is an exclusive writer lock backed by a file. A lock whose file has not
// been touched for its TTL is considered abandoned and is taken over.
type Lock struct {
	path string
	stop chan struct{}
	once sync.Once
}

type lockInfo struct {
	PID  int   `json:"pid"`
	Time int64 `json:"time"`
}

// AcquireLock creates the lock file at path. It fails with ErrLocked when a
// lock younger than ttl exists.
func AcquireLock(path string, ttl time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	for attempt := 0; attempt < 3; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			info, _ := json.Marshal(lockInfo{PID: os.Getpid(), Time: time.Now().Unix()})
			_, _ = f.Write(append(info, '\n'))
			_ = f.Close()

			l := &Lock{path: path, stop: make(chan struct{})}
			go l.heartbeat()
			return l, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lock %s: %w", path, err)
		}

		fi, err := os.Stat(path)
		if err != nil {
			// released between the create and the stat
			continue
		}
		if time.Since(fi.ModTime()) < ttl {
			return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, path)
		}
		if err := breakStaleLock(path, ttl); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, path)
}

// breakStaleLock moves an abandoned lock aside. The rename is atomic, so of
// several processes racing for the same stale file only one moves it. If the
// moved file turns out to be fresh, a competitor replaced the stale lock
// between our stat and rename, and it is put back.
func breakStaleLock(path string, ttl time.Duration) error {
	aside := fmt.Sprintf("%s.stale.%d.%d", path, os.Getpid(), time.Now().UnixNano())
	if err := os.Rename(path, aside); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to break stale lock %s: %w", path, err)
	}

	fi, err := os.Stat(aside)
	if err == nil && time.Since(fi.ModTime()) < ttl {
		_ = os.Link(aside, path)
		_ = os.Remove(aside)
		return fmt.Errorf("%w (lock file %s)", ErrLocked, path)
	}
	_ = os.Remove(aside)
	return nil
}

func (l *Lock) heartbeat() {
	t := time.NewTicker(heartbeatInterval)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-t.C:
			if !ownsLock(l.path) {
				return
			}
			_ = os.Chtimes(l.path, now, now)
		}
	}
}

// Release removes the lock file if it still belongs to this process. A lock
// that was taken over by another writer is left alone. It is safe to call more
// than once.
func (l *Lock) Release() error {
	var err error
	l.once.Do(func() {
		close(l.stop)
		if !ownsLock(l.path) {
			return
		}
		if rmErr := os.Remove(l.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = fmt.Errorf("failed to release lock: %w", rmErr)
		}
	})
	return err
}

func ownsLock(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return false
	}
	return info.PID == os.Getpid()
}
