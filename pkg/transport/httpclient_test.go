package transport

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, s string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func brotlied(t *testing.T, s string) []byte {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestGetHtmlDecodesContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		switch r.URL.Path {
		case "/gzip":
			w.Header().Set("Content-Encoding", "gzip")
			w.Write(gzipped(t, "<p>gzip</p>"))
		case "/br":
			w.Header().Set("Content-Encoding", "br")
			w.Write(brotlied(t, "<p>brotli</p>"))
		default:
			w.Write([]byte("<p>plain</p>"))
		}
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{})
	ctx := context.Background()
	for path, want := range map[string]string{"/gzip": "<p>gzip</p>", "/br": "<p>brotli</p>", "/": "<p>plain</p>"} {
		data, err := c.GetHtml(ctx, srv.URL+path)
		require.NoError(t, err, path)
		assert.Equal(t, want, string(data), path)
	}
}

func TestGetJSONSendsHeadersAndFailsOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-apisports-key") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`{"value": 42}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{})
	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, http.Header{"X-Apisports-Key": {"secret"}}, &out))
	assert.Equal(t, 42, out.Value)

	err := c.GetJSON(context.Background(), srv.URL, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestCacheOverridesOriginHeaders(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Cache-Control", "no-store")
		w.Write([]byte("cached body"))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{CacheTTL: time.Minute})
	for i := 0; i < 3; i++ {
		data, err := c.GetHtml(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "cached body", string(data))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	uncached := NewClient(ClientOptions{})
	_, err := uncached.GetHtml(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(ClientOptions{}).GetHtml(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBrowserHeadersKeepCallerValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rfef-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "gzip, deflate, br", r.Header.Get("Accept-Encoding"))
		assert.Contains(t, r.Header.Get("Accept-Language"), "es-ES")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]any
	for _, ttl := range []time.Duration{0, time.Minute} {
		c := NewClient(ClientOptions{CacheTTL: ttl})
		require.NoError(t, c.GetJSON(context.Background(), srv.URL, http.Header{"User-Agent": {"rfef-test"}}, &out))
	}
}
