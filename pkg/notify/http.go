package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPConfig has parameters shared by http based targets
type HTTPConfig struct {
	Client  *http.Client  // default client with Timeout
	Timeout time.Duration // default 10s
	Every   time.Duration // minimal interval between requests, 0 disables throttling
}

// poster sends requests with optional throttling
type poster struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newPoster(cfg HTTPConfig) poster {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	p := poster{client: cfg.Client}
	if cfg.Every > 0 {
		p.limiter = rate.NewLimiter(rate.Every(cfg.Every), 1)
	}
	return p
}

// do sends req and returns response body for 2xx, *StatusError otherwise
func (p poster) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// StatusError is a non-2xx response of a target
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}
