// Package api is a thin client for the knowledge-base HTTP API.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultUserAgent = "kbsearch/1.0 (knowledge-base search client)"

// Client issues GET requests against a fixed base endpoint.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets a client timeout. Zero keeps transport defaults.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client for baseURL, e.g. "https://support.example.com/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: defaultUserAgent,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL returns the endpoint all paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// get performs one GET request and decodes the body into T. There are no
// retries; network errors are returned as they come.
func get[T any](ctx context.Context, c *Client, path string, params url.Values) (*T, error) {
	endpoint := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	begin := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request", "path", path, "query", params.Encode(), "duration", time.Since(begin), "err", err)
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	c.logger.Debug("api request",
		"path", path,
		"query", params.Encode(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(begin),
	)

	res, err := decodeResult[T](path, resp.StatusCode, body)
	if err != nil {
		return nil, err
	}
	v, err := res.Unwrap()
	if err != nil {
		return nil, err
	}
	return &v, nil
}
