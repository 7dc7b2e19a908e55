package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// FetchErrorKind distinguishes failure modes surfaced by a Fetcher.
type FetchErrorKind int

// Fetch failure modes.
const (
	// FetchErrNetwork covers transport failures: DNS, connect, timeout.
	FetchErrNetwork FetchErrorKind = iota
	// FetchErrStatus covers responses that arrived with a non-2xx status.
	FetchErrStatus
)

// FetchError is the typed error returned for failed retrievals. It is never
// fatal to a crawl; the engine logs it and moves to the next frontier entry.
type FetchError struct {
	URL        string
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchErrStatus {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher performs a single bounded HTTP retrieval.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// CollyFetcher implements Fetcher using a Colly collector. Each Fetch clones
// the base collector, performs exactly one GET with the identifying
// User-Agent, and returns the body. No retries are attempted.
type CollyFetcher struct {
	base   *colly.Collector
	logger *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based Fetcher.
func NewCollyFetcher(userAgent string, timeout time.Duration, logger *zap.Logger) (*CollyFetcher, error) {
	if userAgent == "" {
		return nil, errors.New("user agent is required")
	}
	if timeout <= 0 {
		return nil, errors.New("timeout must be > 0")
	}
	base := colly.NewCollector(colly.UserAgent(userAgent))
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(timeout)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollyFetcher{base: base, logger: logger}, nil
}

// Fetch retrieves rawURL once. Cancellation is best-effort: an in-flight
// request may finish in the background but its result is discarded.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	collector := f.base.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode < 200 || r.StatusCode >= 300 {
			send(fetchResult{err: &FetchError{URL: rawURL, Kind: FetchErrStatus, StatusCode: r.StatusCode}})
			return
		}
		send(fetchResult{body: append([]byte(nil), r.Body...)})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			send(fetchResult{err: &FetchError{URL: rawURL, Kind: FetchErrStatus, StatusCode: r.StatusCode, Err: err}})
			return
		}
		if err == nil {
			err = errors.New("unknown collector error")
		}
		send(fetchResult{err: &FetchError{URL: rawURL, Kind: FetchErrNetwork, Err: err}})
	})

	go func() {
		if err := collector.Visit(rawURL); err != nil {
			send(fetchResult{err: &FetchError{URL: rawURL, Kind: FetchErrNetwork, Err: err}})
			return
		}
		collector.Wait()
		send(fetchResult{err: &FetchError{URL: rawURL, Kind: FetchErrNetwork, Err: errors.New("collector produced no result")}})
	}()

	select {
	case <-ctx.Done():
		f.logger.Debug("fetch abandoned", zap.String("url", rawURL))
		return nil, ctx.Err()
	case res := <-resultCh:
		return res.body, res.err
	}
}

type fetchResult struct {
	body []byte
	err  error
}
