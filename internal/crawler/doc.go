// Package crawler implements the resumable breadth-first wiki crawl: the
// URL classifier, the frontier (queue + visited set), the fetcher, the link
// extractor, the article store and journal, the checkpoint manager, and the
// engine loop that ties them together.
package crawler
