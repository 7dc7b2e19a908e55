package crawler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	m := NewCheckpointManager(path, zap.NewNop())

	f := NewFrontier()
	f.MarkVisited("https://example.wiki/wiki/C_(V5)")
	f.Push("https://example.wiki/wiki/A_(V5)")
	f.Push("https://example.wiki/wiki/B_(V5)")
	state := &CrawlState{Frontier: f, Processed: 5, Saved: 2}

	require.NoError(t, m.Save(state, "https://example.wiki/wiki/Seed"))

	restored, found, err := m.Load()
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, 5, restored.Processed)
	assert.Equal(t, 2, restored.Saved)
	assert.Equal(t, []string{
		"https://example.wiki/wiki/A_(V5)",
		"https://example.wiki/wiki/B_(V5)",
	}, restored.Frontier.Queue())
	assert.True(t, restored.Frontier.Visited("https://example.wiki/wiki/C_(V5)"))
	assert.Equal(t, 1, restored.Frontier.VisitedCount())
}

func TestCheckpointLoadMissingFile(t *testing.T) {
	m := NewCheckpointManager(filepath.Join(t.TempDir(), "checkpoint.json"), zap.NewNop())
	state, found, err := m.Load()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, state)
}

func TestCheckpointAtomicity(t *testing.T) {
	// A crash between temp-file write and rename must leave the previous
	// checkpoint intact and loadable.
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.json")
	m := NewCheckpointManager(path, zap.NewNop())

	f := NewFrontier()
	f.Push("https://example.wiki/wiki/A_(V5)")
	require.NoError(t, m.Save(&CrawlState{Frontier: f, Processed: 1}, "seed"))

	// Simulate the interrupted writer's leftover temp file.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checkpoint.json.tmp-123"), []byte("{partial"), 0o600))

	restored, found, err := m.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, restored.Processed)
	assert.Equal(t, []string{"https://example.wiki/wiki/A_(V5)"}, restored.Frontier.Queue())
}

func TestCheckpointLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	payload, err := json.Marshal(Snapshot{Version: 99})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	m := NewCheckpointManager(path, zap.NewNop())
	_, _, err = m.Load()
	require.Error(t, err)
	var ckErr *CheckpointError
	assert.ErrorAs(t, err, &ckErr)
}

func TestCheckpointLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	m := NewCheckpointManager(path, zap.NewNop())
	_, _, err := m.Load()
	var ckErr *CheckpointError
	assert.ErrorAs(t, err, &ckErr)
}

func TestCheckpointSaveDropsVisitedQueueOverlapOnLoad(t *testing.T) {
	// Snapshots written by older runs may contain queue entries that were
	// visited later; Restore drops them so no URL is processed twice.
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	payload, err := json.Marshal(Snapshot{
		Version: 1,
		Queue:   []string{"https://example.wiki/wiki/A_(V5)", "https://example.wiki/wiki/B_(V5)"},
		Visited: []string{"https://example.wiki/wiki/A_(V5)"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	m := NewCheckpointManager(path, zap.NewNop())
	restored, found, err := m.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"https://example.wiki/wiki/B_(V5)"}, restored.Frontier.Queue())
}
