package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestFetcher points a Fetcher at a test server with no effective rate
// limit and a single retry so failure tests stay fast.
func newTestFetcher(t *testing.T, handler http.Handler) *Fetcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	f, err := NewFetcher(Options{
		BaseURL:        server.URL,
		RequestsPerSec: 1000,
		Burst:          100,
		MaxRetries:     1,
	})
	require.NoError(t, err)
	return f
}

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestFetcherURL(t *testing.T) {
	f, err := NewFetcher(Options{BaseURL: "https://malegislature.gov"})
	require.NoError(t, err)

	assert.Equal(t, "https://malegislature.gov/Committees/Detail/J33", f.URL("/Committees/Detail/J33"))
	assert.Equal(t, "https://example.org/page", f.URL("https://example.org/page"))
}

func TestFetcherDocument(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/page", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "legis-cli")
		_, _ = w.Write([]byte(`<html><body><h1>Hello</h1></body></html>`))
	}))

	doc, err := f.Document(context.Background(), "/page")
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Find("h1").Text())
}

func TestFetcherDocumentNotFound(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := f.Document(context.Background(), "/missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetcherRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`<html><body>ok</body></html>`))
	}))
	t.Cleanup(server.Close)

	f, err := NewFetcher(Options{
		BaseURL:        server.URL,
		RequestsPerSec: 1000,
		Burst:          100,
		MaxRetries:     3,
	})
	require.NoError(t, err)

	_, err = f.Document(context.Background(), "/flaky")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetcherExists(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/present" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	assert.True(t, f.Exists(context.Background(), "/present"))
	assert.False(t, f.Exists(context.Background(), "/absent"))
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", collapseSpace("  a \n\t b   c  "))
	assert.Equal(t, "", collapseSpace("   "))
}
