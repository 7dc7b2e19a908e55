package crawler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJournalLineFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawl_log.txt")
	j, err := OpenJournal(path, zap.NewNop())
	require.NoError(t, err)

	j.Start("https://example.wiki/wiki/Seed", 100)
	j.Saved("https://example.wiki/wiki/A_(V5)")
	j.Error("https://example.wiki/wiki/B_(V5)", errors.New("status 404"))
	j.Complete(90*time.Second, 10, 1)
	require.NoError(t, j.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	log := string(content)

	assert.Contains(t, log, "Crawl started at: ")
	assert.Contains(t, log, "Starting URL: https://example.wiki/wiki/Seed\n")
	assert.Contains(t, log, "Max articles: 100\n")
	assert.Contains(t, log, "Saved: https://example.wiki/wiki/A_(V5)\n")
	assert.Contains(t, log, "Error: https://example.wiki/wiki/B_(V5) - status 404\n")
	assert.Contains(t, log, "Crawl completed at: ")
	assert.Contains(t, log, "Duration: 90.00 seconds\n")
	assert.Contains(t, log, "Processed URLs: 10\n")
	assert.Contains(t, log, "Saved articles: 1\n")
}

func TestJournalAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawl_log.txt")

	j, err := OpenJournal(path, zap.NewNop())
	require.NoError(t, err)
	j.Start("https://example.wiki/wiki/Seed", 100)
	require.NoError(t, j.Close())

	j, err = OpenJournal(path, zap.NewNop())
	require.NoError(t, err)
	j.Resume("https://example.wiki/wiki/Seed", 100, 10, 3)
	require.NoError(t, j.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	log := string(content)

	assert.Contains(t, log, "Crawl started at: ")
	assert.Contains(t, log, "Crawl resumed at: ")
	assert.Contains(t, log, "Restored: 10 processed, 3 saved\n")
}
