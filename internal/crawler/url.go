package crawler

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._()-]+`)

// NormalizeURL reduces a URL to the canonical key used for visited-set and
// queue membership. Two URLs differing only in fragment or query collapse to
// the same key; the scheme and host are lowercased and default ports removed.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""
	u.RawQuery = ""

	return u.String(), nil
}

// Slug derives a filesystem-safe article name from a URL: the final path
// segment with the site's article suffix marker stripped. URLs whose last
// segment sanitizes to nothing fall back to a hash of the full URL so that
// every accepted page still gets a stable filename.
func Slug(rawURL, articleSuffix string) string {
	name := rawURL
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	name = strings.TrimSuffix(name, "_"+articleSuffix)
	name = strings.TrimSuffix(name, articleSuffix)
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return hashURL(rawURL)[:16]
	}
	return name
}

func hashURL(raw string) string {
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func hostMatches(u *url.URL, domain string) bool {
	return u != nil && strings.EqualFold(u.Hostname(), domain)
}
