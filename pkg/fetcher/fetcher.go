// Package fetcher retrieves bulletin documents over HTTP with bounded retries.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
)

const maxBodySize = 10 << 20

// Client fetches documents, retrying failed attempts with a fixed delay between them
type Client struct {
	client    *http.Client
	attempts  int
	delay     time.Duration
	timeout   time.Duration
	userAgent string
	logger    lgr.L
}

// Config holds client parameters, zero values replaced by defaults
type Config struct {
	Attempts   int           // max attempts per document, default 3
	Delay      time.Duration // sleep between attempts, default 1s
	Timeout    time.Duration // per attempt timeout, default 10s
	UserAgent  string
	HTTPClient *http.Client
	Logger     lgr.L
}

// FetchError is returned when all attempts failed
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusError is an unexpected http status of a single attempt
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// New makes a client
func New(cfg Config) *Client {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "quakewatch"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = lgr.Default()
	}
	return &Client{
		client:    cfg.HTTPClient,
		attempts:  cfg.Attempts,
		delay:     cfg.Delay,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger,
	}
}

// FetchWithRetry gets the document body. Transport errors and non-2xx statuses are retried
// up to the configured number of attempts, the last error is wrapped in *FetchError.
func (c *Client) FetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0
	err := repeater.NewFixed(c.attempts, c.delay).Do(ctx, func() error {
		attempt++
		data, err := c.fetch(ctx, url)
		if err != nil {
			c.logger.Logf("[DEBUG] attempt %d/%d for %s failed: %v", attempt, c.attempts, url, err)
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, &FetchError{URL: url, Attempts: attempt, Err: err}
	}
	return body, nil
}

// fetch makes a single attempt bounded by timeout
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
