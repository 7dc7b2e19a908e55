package crawler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
)

// snapshotVersion tags the checkpoint schema. Loaders reject versions they
// do not understand instead of misreading them.
const snapshotVersion = 1

// Snapshot is the durable, versioned form of CrawlState.
type Snapshot struct {
	Version        int       `json:"version"`
	SavedAt        time.Time `json:"saved_at"`
	SeedURL        string    `json:"seed_url"`
	Visited        []string  `json:"visited"`
	Queue          []string  `json:"queue"`
	ProcessedCount int       `json:"processed_count"`
	SavedCount     int       `json:"saved_count"`
}

// CheckpointError wraps checkpoint persistence failures. A failed save
// leaves the previous checkpoint file untouched and loadable.
type CheckpointError struct {
	Op  string
	Err error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint %s: %v", e.Op, e.Err)
}

func (e *CheckpointError) Unwrap() error { return e.Err }

// CheckpointManager atomically persists and restores crawl state. Saves go
// through a temp file in the same directory followed by a rename, so the
// canonical file is never partially visible.
type CheckpointManager struct {
	path   string
	logger *zap.Logger
}

// NewCheckpointManager returns a manager writing to path.
func NewCheckpointManager(path string, logger *zap.Logger) *CheckpointManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckpointManager{path: path, logger: logger}
}

// Save serializes state and atomically replaces the checkpoint file.
func (m *CheckpointManager) Save(state *CrawlState, seedURL string) error {
	visited := state.Frontier.VisitedList()
	sort.Strings(visited)
	snap := Snapshot{
		Version:        snapshotVersion,
		SavedAt:        time.Now().UTC(),
		SeedURL:        seedURL,
		Visited:        visited,
		Queue:          state.Frontier.Queue(),
		ProcessedCount: state.Processed,
		SavedCount:     state.Saved,
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return &CheckpointError{Op: "marshal", Err: err}
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &CheckpointError{Op: "mkdir", Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".tmp-*")
	if err != nil {
		return &CheckpointError{Op: "create temp", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &CheckpointError{Op: "write temp", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &CheckpointError{Op: "close temp", Err: err}
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		_ = os.Remove(tmpName)
		return &CheckpointError{Op: "rename", Err: err}
	}

	m.logger.Debug("checkpoint saved",
		zap.Int("queue", len(snap.Queue)),
		zap.Int("visited", len(snap.Visited)),
		zap.Int("processed", snap.ProcessedCount),
		zap.Int("saved", snap.SavedCount),
	)
	return nil
}

// Load reads the checkpoint if present. A missing file is not an error: it
// reports found=false and the caller starts a fresh run.
func (m *CheckpointManager) Load() (*CrawlState, bool, error) {
	payload, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &CheckpointError{Op: "read", Err: err}
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, false, &CheckpointError{Op: "unmarshal", Err: err}
	}
	if snap.Version != snapshotVersion {
		return nil, false, &CheckpointError{
			Op:  "load",
			Err: fmt.Errorf("unsupported snapshot version %d (want %d)", snap.Version, snapshotVersion),
		}
	}

	frontier := NewFrontier()
	frontier.Restore(snap.Queue, snap.Visited)
	state := &CrawlState{
		Frontier:  frontier,
		Processed: snap.ProcessedCount,
		Saved:     snap.SavedCount,
	}
	return state, true, nil
}

// Path returns the canonical checkpoint location.
func (m *CheckpointManager) Path() string {
	return m.path
}
