// Package fetch provides the retrying HTTP client used for all page downloads.
//
// Requests carry a fixed set of browser-style default headers plus an optional
// User-Agent override, and can be routed through an HTTP proxy. Transport
// failures and non-2xx responses are retried with exponential backoff; once
// retries are exhausted the last error is surfaced to the caller.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Robinson-45/soundcloud-artists-scraper/internal/logger"
)

// Default settings applied when a runtime settings file provides no override.
const (
	DefaultBaseURL       = "https://soundcloud.com"
	DefaultTimeout       = 15 * time.Second
	DefaultMaxRetries    = 3
	DefaultBackoffFactor = 500 * time.Millisecond
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Config holds immutable per-client fetch settings.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	BackoffFactor time.Duration
	UserAgent     string
	Proxy         string
}

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
		MaxRetries:    DefaultMaxRetries,
		BackoffFactor: DefaultBackoffFactor,
		UserAgent:     DefaultUserAgent,
	}
}

// Client issues GET requests with retry and backoff behavior.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger
	metrics    *logger.Metrics
}

// New creates a new Client. The logger and metrics tracker must be non-nil.
func New(cfg Config, log *logger.Logger, metrics *logger.Metrics) (*Client, error) {
	transport := http.DefaultTransport
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy URL: %w", err)
		}
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		log:     log,
		metrics: metrics,
	}, nil
}

// Config returns the client's immutable configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Get fetches the given URL and returns the response body.
//
// Up to MaxRetries attempts are made; the delay before attempt n is
// BackoffFactor doubled after each failure, with no jitter. The error from the
// final failed attempt is returned wrapped, never swallowed.
func (c *Client) Get(rawURL string) ([]byte, error) {
	attempts := 0

	operation := func() ([]byte, error) {
		attempts++
		c.log.Debug("GET request", logger.Fields{
			"url":     rawURL,
			"attempt": attempts,
		})
		c.metrics.IncrCounter("http.requests")

		start := time.Now()
		body, err := c.doGet(rawURL)
		c.metrics.RecordTiming("http.fetch", time.Since(start))
		if err != nil {
			c.metrics.IncrCounter("http.failures")
			c.log.Warn("Request failed", logger.Fields{
				"url":         rawURL,
				"attempt":     attempts,
				"max_retries": c.cfg.MaxRetries,
				"reason":      err.Error(),
			})
			return nil, err
		}
		return body, nil
	}

	body, err := backoff.RetryWithData(operation, c.newBackOff())
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	return body, nil
}

// doGet performs a single request attempt.
func (c *Client) doGet(rawURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		// A malformed URL will not get better on retry.
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// newBackOff builds the retry schedule: delay before attempt n (n>=2) is
// BackoffFactor * 2^(n-2), unjittered, capped at MaxRetries total attempts.
func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.BackoffFactor
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = time.Hour
	b.MaxElapsedTime = 0

	retries := c.cfg.MaxRetries - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithMaxRetries(b, uint64(retries))
}
