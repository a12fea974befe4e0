package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
)

// ErrNoSnapshot is returned when a directory holds no file with the snapshot prefix.
var ErrNoSnapshot = errors.New("no snapshot found")

const snapshotExt = ".json"

// Snapshot is one decoded snapshot file.
type Snapshot struct {
	Name    string
	Path    string
	ModTime time.Time
	// Date is taken from the YYYYMMDD name suffix; zero if the name has none.
	Date    time.Time
	Records []domain.RawRecord
}

// LoadFile opens and decodes the snapshot at path.
func LoadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Snapshot{}, fmt.Errorf("stat snapshot: %w", err)
	}

	records, err := Decode(f)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	name := filepath.Base(path)
	return Snapshot{
		Name:    name,
		Path:    path,
		ModTime: info.ModTime(),
		Date:    snapshotDate(name),
		Records: records,
	}, nil
}

// LatestSnapshot loads the most recently modified prefix*.json file in dir.
func LatestSnapshot(dir, prefix string) (Snapshot, error) {
	path, err := latestPath(dir, prefix)
	if err != nil {
		return Snapshot{}, err
	}
	return LoadFile(path)
}

// latestPath picks the newest matching file by modification time, breaking
// ties on name so the choice is stable.
func latestPath(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read snapshot dir: %w", err)
	}

	var (
		best     string
		bestTime time.Time
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isSnapshotName(name, prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		mt := info.ModTime()
		if best == "" || mt.After(bestTime) || (mt.Equal(bestTime) && name > best) {
			best, bestTime = name, mt
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w in %s with prefix %q", ErrNoSnapshot, dir, prefix)
	}
	return filepath.Join(dir, best), nil
}

func isSnapshotName(name, prefix string) bool {
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, snapshotExt)
}

// snapshotDate parses the date stamp in names like outages_data_20240105.json.
func snapshotDate(name string) time.Time {
	stem := strings.TrimSuffix(name, snapshotExt)
	if i := strings.LastIndexByte(stem, '_'); i >= 0 {
		stem = stem[i+1:]
	}
	if len(stem) < 8 {
		return time.Time{}
	}
	t, err := time.ParseInLocation("20060102", stem[:8], domain.JST)
	if err != nil {
		return time.Time{}
	}
	return t
}
