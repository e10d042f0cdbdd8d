package transport

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gregjones/httpcache"
	"github.com/richard-senior/rfef/internal/logger"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// ClientOptions configures NewClient
type ClientOptions struct {
	// CacheTTL overrides the origin's caching headers. Zero disables caching.
	CacheTTL time.Duration
	// CABundle is an optional PEM file appended to the system roots
	CABundle string
	Timeout  time.Duration
	// Base is the underlying transport, http.Transport with the custom roots
	// when nil
	Base http.RoundTripper
}

// Client fetches web pages and JSON documents the way a browser would,
// decoding gzip, deflate and brotli bodies itself
type Client struct {
	http *http.Client
}

// NewClient builds a Client. Responses are kept in memory for CacheTTL
// regardless of what the origin says about caching.
func NewClient(opts ClientOptions) *Client {
	base := opts.Base
	if base == nil {
		base = &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: rootCAs(opts.CABundle)},
			Proxy:           http.ProxyFromEnvironment,
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	hooks := &HeaderOverrideTransport{wrapped: base, Request: browserHeaders}
	var rt http.RoundTripper = hooks
	if opts.CacheTTL > 0 {
		hooks.Response = enforceMaxAge(opts.CacheTTL)
		cached := httpcache.NewTransport(httpcache.NewMemoryCache())
		cached.Transport = hooks
		rt = cached
	}

	return &Client{http: &http.Client{
		Transport: rt,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}}
}

// rootCAs returns the system pool plus the PEM bundle at path, if any
func rootCAs(path string) *x509.CertPool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		logger.Warn("Failed to get system cert pool", err)
		pool = x509.NewCertPool()
	}
	if path == "" {
		return pool
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Proceeding without CA bundle", err)
		return pool
	}
	if !pool.AppendCertsFromPEM(pem) {
		logger.Warn("Failed to append CA bundle", path)
	} else {
		logger.Info("Added CA bundle to root CAs", path)
	}
	return pool
}

// browserHeaders fills in the headers a browser would send, keeping any the
// caller set
func browserHeaders(req *http.Request) {
	defaults := map[string]string{
		"User-Agent":      userAgent,
		"Accept-Encoding": "gzip, deflate, br",
		"Accept-Language": "es-ES,es;q=0.9,en;q=0.8",
	}
	for k, v := range defaults {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
}

// enforceMaxAge replaces the origin's cache headers with a fixed max-age
func enforceMaxAge(ttl time.Duration) func(*http.Response) error {
	return func(resp *http.Response) error {
		if resp.StatusCode != http.StatusOK {
			return nil
		}
		resp.Header.Del("Pragma")
		resp.Header.Del("Expires")
		resp.Header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(ttl/time.Second)))
		return nil
	}
}

// HeaderOverrideTransport applies Request and Response hooks around the
// wrapped transport
type HeaderOverrideTransport struct {
	Request  func(req *http.Request)
	Response func(resp *http.Response) error

	wrapped http.RoundTripper
}

func (t *HeaderOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	if t.Request != nil {
		t.Request(req2)
	}
	resp, err := t.wrapped.RoundTrip(req2)
	if err != nil {
		return nil, err
	}
	if t.Response != nil {
		if err := t.Response(resp); err != nil {
			resp.Body.Close()
			return nil, err
		}
	}
	return resp, nil
}

// GetHtml fetches a page with browser headers
func (c *Client) GetHtml(ctx context.Context, url string) ([]byte, error) {
	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	header.Set("Referer", "http://www.google.com/")
	return c.get(ctx, url, header)
}

// GetJSON fetches url and decodes the body into v. Extra headers (API keys)
// are added to the request.
func (c *Client) GetJSON(ctx context.Context, url string, extra http.Header, v any) error {
	header := http.Header{}
	header.Set("Accept", "application/json")
	for k, vals := range extra {
		for _, val := range vals {
			header.Add(k, val)
		}
	}
	data, err := c.get(ctx, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = header

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s returned error status %d", url, resp.StatusCode)
	}
	if resp.Header.Get(httpcache.XFromCache) != "" {
		logger.Debug("Served from cache", url)
	}

	reader, err := decodeBody(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return data, nil
}

// decodeBody wraps body in a reader for its Content-Encoding
func decodeBody(encoding string, body io.ReadCloser) (io.ReadCloser, error) {
	switch encoding {
	case "gzip":
		r, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		return flate.NewReader(body), nil
	case "br":
		return io.NopCloser(brotli.NewReader(body)), nil
	case "", "identity":
		return io.NopCloser(body), nil
	default:
		logger.Warn("Unknown content encoding:", encoding)
		return io.NopCloser(body), nil
	}
}
