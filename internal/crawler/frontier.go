package crawler

import "errors"

// ErrFrontierEmpty signals that no pending URLs remain.
var ErrFrontierEmpty = errors.New("frontier is empty")

// Frontier is the BFS work queue plus the visited set. URLs are stored under
// their normalized key (fragment and query stripped), so two spellings of
// the same page share one queue slot and one visited entry.
//
// Push dedupes against both the visited set and the currently queued set,
// keeping queue ∩ visited empty at all times. The Frontier is owned by the
// single engine loop and is not safe for concurrent use.
type Frontier struct {
	queue   []string
	queued  map[string]struct{}
	visited map[string]struct{}
}

// NewFrontier returns an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		queued:  make(map[string]struct{}),
		visited: make(map[string]struct{}),
	}
}

// Push appends rawURL to the queue tail unless its normalized key is already
// visited or already queued. It reports whether the URL was enqueued.
func (f *Frontier) Push(rawURL string) bool {
	key, err := NormalizeURL(rawURL)
	if err != nil || key == "" {
		return false
	}
	if _, ok := f.visited[key]; ok {
		return false
	}
	if _, ok := f.queued[key]; ok {
		return false
	}
	f.queued[key] = struct{}{}
	f.queue = append(f.queue, key)
	return true
}

// Pop removes and returns the queue head, or ErrFrontierEmpty.
func (f *Frontier) Pop() (string, error) {
	if len(f.queue) == 0 {
		return "", ErrFrontierEmpty
	}
	key := f.queue[0]
	f.queue = f.queue[1:]
	delete(f.queued, key)
	return key, nil
}

// MarkVisited records rawURL's normalized key in the visited set. The
// visited set only grows; marking an already-visited URL is a no-op.
func (f *Frontier) MarkVisited(rawURL string) {
	key, err := NormalizeURL(rawURL)
	if err != nil || key == "" {
		return
	}
	f.visited[key] = struct{}{}
}

// Visited reports whether rawURL's normalized key has been processed.
func (f *Frontier) Visited(rawURL string) bool {
	key, err := NormalizeURL(rawURL)
	if err != nil {
		return false
	}
	_, ok := f.visited[key]
	return ok
}

// Len returns the number of pending URLs.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// VisitedCount returns the size of the visited set.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}

// Queue returns a copy of the pending URLs in order.
func (f *Frontier) Queue() []string {
	return append([]string(nil), f.queue...)
}

// VisitedList returns the visited keys in unspecified order.
func (f *Frontier) VisitedList() []string {
	out := make([]string, 0, len(f.visited))
	for key := range f.visited {
		out = append(out, key)
	}
	return out
}

// Restore replaces the Frontier contents with a previously snapshotted
// queue and visited set. Queue entries that are already visited are dropped
// so the queue ∩ visited invariant holds after a checkpoint load too.
func (f *Frontier) Restore(queue, visited []string) {
	f.queue = f.queue[:0]
	f.queued = make(map[string]struct{}, len(queue))
	f.visited = make(map[string]struct{}, len(visited))
	for _, key := range visited {
		if key != "" {
			f.visited[key] = struct{}{}
		}
	}
	for _, key := range queue {
		if key == "" {
			continue
		}
		if _, ok := f.visited[key]; ok {
			continue
		}
		if _, ok := f.queued[key]; ok {
			continue
		}
		f.queued[key] = struct{}{}
		f.queue = append(f.queue, key)
	}
}
