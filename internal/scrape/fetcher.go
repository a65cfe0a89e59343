// Package scrape collects committees, hearings, bill status, and evidence
// documents from the legislature website. All HTTP traffic funnels through
// Fetcher so one rate limiter governs the whole run.
package scrape

import (
	"context"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the site fetcher.
type Options struct {
	BaseURL        string
	RequestsPerSec float64
	Burst          int
	Timeout        time.Duration
	UserAgent      string
	MaxRetries     int
}

// Fetcher fetches and parses pages from the legislature site with retry and
// rate limiting. A single limiter covers all requests; the site is one host.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	base    *url.URL
	opts    Options
}

// NewFetcher creates a Fetcher with the given options.
func NewFetcher(opts Options) (*Fetcher, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "legis-cli/1.0"
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse base url %q", opts.BaseURL)
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		base:    base,
		opts:    opts,
	}, nil
}

// URL resolves a site-relative path against the base URL. Absolute URLs pass
// through unchanged.
func (f *Fetcher) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return f.base.ResolveReference(ref).String()
}

// Document fetches a page and parses it.
func (f *Fetcher) Document(ctx context.Context, path string) (*goquery.Document, error) {
	resp, err := f.do(ctx, http.MethodGet, f.URL(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("scrape: status %d from %s", resp.StatusCode, f.URL(path))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse %s", f.URL(path))
	}
	return doc, nil
}

// Exists reports whether a HEAD request for the path returns 200. Used to
// probe for per-bill order pages without downloading them.
func (f *Fetcher) Exists(ctx context.Context, path string) bool {
	resp, err := f.do(ctx, http.MethodHead, f.URL(path))
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (f *Fetcher) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	var lastErr error
	for attempt := range f.opts.MaxRetries {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "scrape: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "scrape: create request")
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("scrape: http %d from %s", resp.StatusCode, rawURL)
			zap.L().Warn("server pushed back, retrying",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			f.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}
	return nil, eris.Wrap(lastErr, "scrape: all retries exhausted")
}

func (f *Fetcher) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
