package crawler

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const mappingFileName = "url_mapping.txt"

// ArticleStore writes accepted pages to disk and appends each accepted
// URL to the mapping log. The mapping log is append-only for all time: it
// is never rewritten or deduplicated retroactively.
type ArticleStore struct {
	dir           string
	articleSuffix string
	logger        *zap.Logger
}

// NewArticleStore creates the output directory if needed and returns a
// store rooted there.
func NewArticleStore(dir, articleSuffix string, logger *zap.Logger) (*ArticleStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArticleStore{dir: dir, articleSuffix: articleSuffix, logger: logger}, nil
}

// Save writes body to <slug>.html under the output directory and appends a
// "filename\turl" line to the mapping log, returning the filename. An
// existing file for the same slug is overwritten; slug collisions between
// different URLs are a known limitation. If either write fails, Save
// returns an error and the caller must not count the article as saved.
func (s *ArticleStore) Save(rawURL string, body []byte) (string, error) {
	filename := Slug(rawURL, s.articleSuffix) + ".html"
	target := filepath.Join(s.dir, filename)

	if err := os.WriteFile(target, body, 0o600); err != nil {
		return "", fmt.Errorf("write article %s: %w", target, err)
	}
	if err := s.appendMapping(filename, rawURL); err != nil {
		return "", err
	}

	s.logger.Debug("article saved",
		zap.String("url", rawURL),
		zap.String("file", filename),
		zap.Int("bytes", len(body)),
	)
	return filename, nil
}

// MappingPath returns the location of the mapping log.
func (s *ArticleStore) MappingPath() string {
	return filepath.Join(s.dir, mappingFileName)
}

func (s *ArticleStore) appendMapping(filename, rawURL string) error {
	f, err := os.OpenFile(s.MappingPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open mapping log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("close mapping log", zap.Error(cerr))
		}
	}()
	if _, err := fmt.Fprintf(f, "%s\t%s\n", filename, rawURL); err != nil {
		return fmt.Errorf("append mapping log: %w", err)
	}
	return nil
}
