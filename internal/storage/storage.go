package storage

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/refsched/internal/match"
)

// Storage handles persistence of match snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Key derives the snapshot key of a referee set. Order and duplicates
// do not matter.
func Key(names []match.RefereeName) string {
	params := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		p := n.Param()
		if !seen[p] {
			seen[p] = true
			params = append(params, p)
		}
	}
	sort.Strings(params)

	h := sha1.New()
	h.Write([]byte(strings.Join(params, ",")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

func (s *Storage) snapshotPath(key string) string {
	if key == "" {
		return filepath.Join(s.dataDir, "snapshot.json")
	}
	return filepath.Join(s.dataDir, fmt.Sprintf("snapshot_%s.json", key))
}

// LoadSnapshot loads a snapshot from disk. A missing file yields an empty snapshot.
func (s *Storage) LoadSnapshot(key string) (*match.Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return match.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot match.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if snapshot.Matches == nil {
		snapshot.Matches = make(map[string]*match.Match)
	}

	return &snapshot, nil
}

// SaveSnapshot writes a snapshot to disk, replacing the previous one atomically
func (s *Storage) SaveSnapshot(snapshot *match.Snapshot, key string) error {
	path := s.snapshotPath(key)

	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// CreateSnapshotFromMatches creates and saves a snapshot from a list of matches
func (s *Storage) CreateSnapshotFromMatches(matches []*match.Match, key string) error {
	snapshot := match.CreateSnapshot(matches, time.Now().UTC().Format(time.RFC3339))
	return s.SaveSnapshot(snapshot, key)
}
