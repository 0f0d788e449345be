// Package fetch is a pure HTTP GET utility: timeouts, a stable User-Agent,
// gzip auto-decompression, and typed error classification. It never retries.
package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "resultsync/1.0 (+race-results ingestion bot)"
)

// TransportError wraps a network-level failure (DNS, TCP, TLS, timeout).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError wraps a 4xx/5xx response with the status code preserved.
type HTTPStatusError struct {
	URL  string
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d fetching %s", e.Code, e.URL)
}

// Client is a pure GET fetcher. A single instance may be shared across
// organisers; pass Options per call to vary UA/timeout/proxy.
type Client struct {
	httpClient *http.Client
}

// Options configures a single GET call.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Proxy     string
}

// New builds a Client with gzip auto-decompression wired into the transport.
func New() *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &compressedTransport{transport: http.DefaultTransport.(*http.Transport).Clone()},
		},
	}
}

// Get performs an HTTP GET. Any status < 400 is treated as a body-bearing
// response and its bytes are returned alongside the status code. 4xx/5xx
// responses are reported as *HTTPStatusError; network failures (DNS, TCP,
// TLS, timeout) are reported as *TransportError. No retries are attempted.
func (c *Client) Get(ctx context.Context, targetURL string, opts Options) ([]byte, int, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, 0, &TransportError{URL: targetURL, Err: err}
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept-Encoding", "gzip")

	client := *c.httpClient
	client.Timeout = timeout
	if opts.Proxy != "" {
		if proxyURL, perr := url.Parse(opts.Proxy); perr == nil {
			base := http.DefaultTransport.(*http.Transport).Clone()
			base.Proxy = http.ProxyURL(proxyURL)
			client.Transport = &compressedTransport{transport: base}
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, &TransportError{URL: targetURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{URL: targetURL, Err: err}
	}

	if resp.StatusCode >= 400 {
		return body, resp.StatusCode, &HTTPStatusError{URL: targetURL, Code: resp.StatusCode}
	}
	return body, resp.StatusCode, nil
}

// compressedTransport transparently decompresses gzip-encoded bodies,
// mirroring the Accept-Encoding/Content-Encoding dance of a standard
// browser client.
type compressedTransport struct {
	transport http.RoundTripper
}

func (c *compressedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := c.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzReader, gzErr := gzip.NewReader(resp.Body)
		if gzErr != nil {
			return resp, nil
		}
		resp.Body = &gzipReadCloser{Reader: gzReader, closer: resp.Body}
		resp.Header.Del("Content-Encoding")
	}

	return resp, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	closer io.ReadCloser
}

func (g *gzipReadCloser) Close() error {
	if err := g.Reader.Close(); err != nil {
		return err
	}
	return g.closer.Close()
}
