package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/outage-timeline-service/internal/observability"
)

// ErrInvalidName is returned for snapshot names that are not a plain file
// name inside the data directory.
var ErrInvalidName = errors.New("invalid snapshot name")

// Store tracks the newest snapshot in a data directory and loads older ones
// by name for comparison.
type Store struct {
	dir     string
	prefix  string
	loader  *CachedLoader
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.RWMutex
	current *Snapshot
}

// NewStore creates a Store over dir. Nothing is read until Refresh.
func NewStore(dir, prefix string, loader *CachedLoader, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		dir:     dir,
		prefix:  prefix,
		loader:  loader,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Refresh reloads the newest snapshot. The boolean reports whether it differs
// from the previously current one. On error the current snapshot is kept.
func (s *Store) Refresh(_ context.Context) (Snapshot, bool, error) {
	path, err := latestPath(s.dir, s.prefix)
	if err != nil {
		return Snapshot{}, false, err
	}
	snap, err := s.loader.Load(path)
	if err != nil {
		return Snapshot{}, false, err
	}

	s.mu.Lock()
	changed := s.current == nil || s.current.Path != snap.Path || !s.current.ModTime.Equal(snap.ModTime)
	s.current = &snap
	s.mu.Unlock()

	s.metrics.SnapshotAge.Set(s.clock.Since(snap.ModTime).Seconds())
	s.metrics.SnapshotRecords.Set(float64(len(snap.Records)))
	if changed {
		s.logger.Info("snapshot loaded", "name", snap.Name, "records", len(snap.Records), "modified", snap.ModTime)
	}
	return snap, changed, nil
}

// Current returns the snapshot loaded by the last successful Refresh.
func (s *Store) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Snapshot{}, false
	}
	return *s.current, true
}

// Load returns the snapshot with the given file name from the data directory.
// Only plain file names carrying the store's snapshot prefix are accepted.
func (s *Store) Load(name string) (Snapshot, error) {
	if filepath.Base(name) != name || !isSnapshotName(name, s.prefix) {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return s.loader.Load(filepath.Join(s.dir, name))
}

// List returns the snapshot file names in the data directory, newest date first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isSnapshotName(e.Name(), s.prefix) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// CheckReadiness reports an error until a snapshot has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if _, ok := s.Current(); !ok {
		return errors.New("no snapshot loaded yet")
	}
	return nil
}

// Watch refreshes every interval until ctx is cancelled, calling onChange
// (when non-nil) each time a new snapshot replaces the current one. Refresh
// failures are logged and retried on the next tick.
func (s *Store) Watch(ctx context.Context, interval time.Duration, onChange func(context.Context, Snapshot)) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			snap, changed, err := s.Refresh(ctx)
			if err != nil {
				s.logger.Error("snapshot refresh failed", "error", err, "dir", s.dir)
				continue
			}
			if changed && onChange != nil {
				onChange(ctx, snap)
			}
		}
	}
}
