package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkExtractor parses a fetched page's anchors into absolute same-site
// URLs. Malformed markup degrades gracefully: goquery extracts whatever
// valid anchors it can find, and only a hard parse failure yields an error.
type LinkExtractor struct {
	domain string
}

// NewLinkExtractor returns an extractor scoped to the given site domain.
func NewLinkExtractor(domain string) *LinkExtractor {
	return &LinkExtractor{domain: domain}
}

// ExtractLinks resolves every usable anchor in body against baseURL and
// returns the absolute URLs whose host matches the site domain. Empty,
// fragment-only, and script-scheme references are discarded.
func (e *LinkExtractor) ExtractLinks(baseURL string, body []byte) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !hostMatches(abs, e.domain) {
			return
		}
		links = append(links, abs.String())
	})
	return links, nil
}
