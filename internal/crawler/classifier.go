package crawler

import (
	"net/url"
	"strings"
)

// ClassifierConfig carries the site-specific scope rules. All values come
// from configuration; nothing here is hardcoded to a particular wiki.
type ClassifierConfig struct {
	// SeedURL is always considered in scope, whatever the other rules say.
	SeedURL string
	// Domain is the only host the crawler will accept articles from.
	Domain string
	// LanguageCodes lists localized path segments ("de", "fr", ...) that mark
	// a page as a translation rather than a canonical article.
	LanguageCodes []string
	// NamespacePrefixes lists wiki namespace markers ("Category:", "Talk:")
	// that disqualify a page.
	NamespacePrefixes []string
	// ArticleSuffix is the marker the path must end with, e.g. "(Civ5)".
	ArticleSuffix string
	// ExcludedPageSuffix rejects internal reference sub-pages,
	// e.g. "/Civilopedia".
	ExcludedPageSuffix string
}

// Classifier decides whether a URL identifies an in-scope article. It is a
// pure predicate: no I/O, no dependence on crawl state, deterministic for
// any given input.
type Classifier struct {
	cfg       ClassifierConfig
	seedKey   string
	languages map[string]struct{}
}

// NewClassifier precomputes lookup structures from the rule set.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	languages := make(map[string]struct{}, len(cfg.LanguageCodes))
	for _, code := range cfg.LanguageCodes {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" {
			languages[code] = struct{}{}
		}
	}
	seedKey, err := NormalizeURL(cfg.SeedURL)
	if err != nil {
		seedKey = cfg.SeedURL
	}
	return &Classifier{
		cfg:       cfg,
		seedKey:   seedKey,
		languages: languages,
	}
}

// InScope reports whether rawURL identifies an article the crawler should
// fetch and keep. All rules must pass; the seed URL short-circuits them.
func (c *Classifier) InScope(rawURL string) bool {
	key, err := NormalizeURL(rawURL)
	if err != nil {
		return false
	}
	if key == c.seedKey {
		return true
	}

	u, err := url.Parse(key)
	if err != nil {
		return false
	}
	if !hostMatches(u, c.cfg.Domain) {
		return false
	}

	path := u.Path
	if c.hasLanguageSegment(path) {
		return false
	}
	if c.hasNamespacePrefix(path) {
		return false
	}
	if !strings.HasSuffix(path, c.cfg.ArticleSuffix) {
		return false
	}
	if c.cfg.ExcludedPageSuffix != "" && strings.Contains(path, c.cfg.ExcludedPageSuffix) {
		return false
	}
	return true
}

func (c *Classifier) hasLanguageSegment(path string) bool {
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		if _, ok := c.languages[strings.ToLower(segment)]; ok {
			return true
		}
	}
	return false
}

func (c *Classifier) hasNamespacePrefix(path string) bool {
	last := path
	if idx := strings.LastIndex(last, "/"); idx >= 0 {
		last = last[idx+1:]
	}
	if decoded, err := url.PathUnescape(last); err == nil {
		last = decoded
	}
	for _, prefix := range c.cfg.NamespacePrefixes {
		if prefix == "" {
			continue
		}
		if strings.HasPrefix(last, prefix) {
			return true
		}
		// Wiki titles use underscores interchangeably with spaces.
		if strings.HasPrefix(last, strings.ReplaceAll(prefix, "_", " ")) {
			return true
		}
	}
	return false
}
