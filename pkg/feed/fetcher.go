package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxFeedBytes caps the feed body, the eqvol feed is well under 1MB
const maxFeedBytes = 5 << 20

// FetchError is a failed feed request: transport error, timeout or unexpected status
type FetchError struct {
	URL    string
	Status int // zero for transport errors
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch feed %s: unexpected status code %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// response of a single feed request
type response struct {
	body         []byte
	lastModified string
	notModified  bool
}

// fetch requests the feed, setting If-Modified-Since when the token is known
func (p *Poller) fetch(ctx context.Context, lastModified string) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: p.url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", p.userAgent)
	addFeedHeaders(req)
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: p.url, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode == http.StatusNotModified {
		return &response{notModified: true, lastModified: lastModified}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: p.url, Status: resp.StatusCode, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, &FetchError{URL: p.url, Err: fmt.Errorf("read body: %w", err)}
	}
	return &response{body: body, lastModified: resp.Header.Get("Last-Modified")}, nil
}
