package optimizer

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const (
	parsePath    = "/api/upload-excel"
	optimizePath = "/api/optimize"
	exportPath   = "/api/export-results"
)

// Client talks to the external optimization backend over HTTP.
//
// It implements:
//   - ports.InputParser (spreadsheet parse/validate)
//   - ports.Optimizer
//   - ports.ResultExporter
//
// Parse and export retry transient failures; optimize is sent exactly once
// because each call is expensive for the backend.
//
// The client is safe for concurrent use.
type Client struct {
	session     *http.Client
	baseURL     string
	maxAttempts int
	backoff     time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.session = h }
}

// WithRetry sets the attempt budget and initial backoff for idempotent calls.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		c.backoff = backoff
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("optimizer base url is empty")
	}

	c := &Client{
		session:     &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}
