// Package fetcher issues the pipeline's outbound HTTP requests. Every request
// carries a fixed desktop-browser header set; failures surface as
// *types.FetchError and the caller decides whether to skip or abort.
package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"newsarchive/internal/config"
	"newsarchive/internal/types"
)

// Client fetches pages and JSON APIs. One outbound request per call, no
// retries.
type Client struct {
	http   *http.Client
	cfg    config.FetcherConfig
	logger *slog.Logger
}

// New creates a Client from fetcher configuration.
func New(cfg config.FetcherConfig, logger *slog.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // We handle decompression ourselves (including brotli)
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		cfg:    cfg,
		logger: logger.With("component", "fetcher"),
	}
}

// Get fetches a URL and returns the response body. Non-2xx statuses, network
// errors, and timeouts all return a *types.FetchError.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.GetWith(ctx, rawURL, nil)
}

// GetWith fetches a URL with extra headers layered on top of the standard
// browser set.
func (c *Client) GetWith(ctx context.Context, rawURL string, extra http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for key, values := range extra {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &types.FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	var reader io.Reader = resp.Body
	if c.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, c.cfg.MaxBodySize)
	}

	reader, err = decompressReader(resp, reader)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	if len(body) == 0 {
		return nil, &types.FetchError{URL: rawURL, Err: types.ErrEmptyResponse}
	}

	c.logger.Debug("fetch complete",
		"url", rawURL,
		"status", resp.StatusCode,
		"size", len(body),
		"duration", time.Since(start),
	)

	return body, nil
}

// GetJSON fetches a URL with query parameters and decodes the JSON response
// into out. Used by the BLOX CMS search adapters.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, extra http.Header, out any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &types.FetchError{URL: rawURL, Err: err}
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	header := http.Header{}
	header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	header.Set("X-Requested-With", "XMLHttpRequest")
	for key, values := range extra {
		for _, v := range values {
			header.Set(key, v)
		}
	}

	body, err := c.GetWith(ctx, u.String(), header)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &types.ParseError{URL: rawURL, Err: err}
	}
	return nil
}

// Delay returns the configured politeness delay between candidate fetches.
func (c *Client) Delay() time.Duration {
	return c.cfg.PolitenessDelay
}

// MaxCandidates returns the cap on candidate URLs scanned per site.
func (c *Client) MaxCandidates() int {
	return c.cfg.MaxCandidates
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
