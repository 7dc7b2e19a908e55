package crawler

// CrawlState is the single mutable aggregate owned by the engine loop. It is
// constructed once per run (or hydrated from a checkpoint) and passed by
// reference; no package-level crawl state exists anywhere.
type CrawlState struct {
	Frontier *Frontier
	// Processed counts URLs popped from the queue.
	Processed int
	// Saved counts URLs accepted and durably written. Saved never exceeds
	// the configured article limit and never exceeds Processed.
	Saved int
}

// NewCrawlState returns a fresh state seeded with seedURL.
func NewCrawlState(seedURL string) *CrawlState {
	f := NewFrontier()
	f.Push(seedURL)
	return &CrawlState{Frontier: f}
}
