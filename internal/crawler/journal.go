package crawler

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// Journal is the append-only human-readable crawl event log
// (crawl_log.txt). Line formats are stable so downstream tooling that greps
// the log keeps working across versions.
type Journal struct {
	f      *os.File
	logger *zap.Logger
}

// OpenJournal opens (or creates) the journal at path in append mode.
// Appending rather than truncating keeps the history of earlier runs when a
// crawl resumes from a checkpoint.
func OpenJournal(path string, logger *zap.Logger) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open crawl journal %s: %w", path, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{f: f, logger: logger}, nil
}

// Start records the header for a fresh run.
func (j *Journal) Start(seedURL string, maxArticles int) {
	j.writef("Crawl started at: %s\n", time.Now().Format(time.RFC3339))
	j.writef("Starting URL: %s\n", seedURL)
	j.writef("Max articles: %d\n\n", maxArticles)
}

// Resume records the header for a run restored from a checkpoint.
func (j *Journal) Resume(seedURL string, maxArticles, processed, saved int) {
	j.writef("Crawl resumed at: %s\n", time.Now().Format(time.RFC3339))
	j.writef("Starting URL: %s\n", seedURL)
	j.writef("Max articles: %d\n", maxArticles)
	j.writef("Restored: %d processed, %d saved\n\n", processed, saved)
}

// Saved records one accepted article.
func (j *Journal) Saved(rawURL string) {
	j.writef("Saved: %s\n", rawURL)
}

// Error records one per-URL failure.
func (j *Journal) Error(rawURL string, err error) {
	j.writef("Error: %s - %v\n", rawURL, err)
}

// Complete records the end-of-run summary.
func (j *Journal) Complete(duration time.Duration, processed, saved int) {
	j.writef("\nCrawl completed at: %s\n", time.Now().Format(time.RFC3339))
	j.writef("Duration: %.2f seconds\n", duration.Seconds())
	j.writef("Processed URLs: %d\n", processed)
	j.writef("Saved articles: %d\n", saved)
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	if err := j.f.Close(); err != nil {
		return fmt.Errorf("close crawl journal: %w", err)
	}
	return nil
}

// writef appends one entry. Journal failures must never abort a crawl, so
// they are logged and swallowed here.
func (j *Journal) writef(format string, args ...any) {
	if _, err := fmt.Fprintf(j.f, format, args...); err != nil {
		j.logger.Warn("crawl journal write failed", zap.Error(err))
	}
}
