// Package feed polls the bulletin syndication feed and reports entries not seen before.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/quakewatch/pkg/domain"
	"github.com/umputun/quakewatch/pkg/metrics"
)

// DefaultURL is JMA "earthquake and volcano" feed, updated every minute
const DefaultURL = "https://www.data.jma.go.jp/developer/xml/feed/eqvol.xml"

// Poller issues conditional requests to the feed endpoint and diffs entries against State
type Poller struct {
	url       string
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    lgr.L
	metrics   *metrics.Metrics
}

// Config holds poller parameters
type Config struct {
	URL        string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     lgr.L
	Metrics    *metrics.Metrics
}

// NewPoller makes a poller, zero config fields are set to defaults
func NewPoller(cfg Config) *Poller {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "quakewatch"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = lgr.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(nil)
	}
	return &Poller{
		url:       cfg.URL,
		client:    cfg.HTTPClient,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// Initialize reads the whole feed unconditionally and seeds the seen set with every id,
// so bulletins published before start are never dispatched. Any failure is returned.
func (p *Poller) Initialize(ctx context.Context) (*State, error) {
	p.logger.Logf("[INFO] initializing seen entries from %s", p.url)

	resp, err := p.fetch(ctx, "")
	if err != nil {
		p.metrics.Polls.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("initialize: %w", err)
	}
	if resp.notModified {
		// no body to build the baseline from
		p.metrics.Polls.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("initialize: %w", &FetchError{URL: p.url, Status: http.StatusNotModified})
	}

	entries, err := parseEntries(resp.body)
	if err != nil {
		p.metrics.Polls.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("initialize: %w", err)
	}

	state := NewState()
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		state.markSeen(e.ID)
	}
	state.setLastModified(resp.lastModified)

	p.metrics.Polls.WithLabelValues("ok").Inc()
	p.metrics.SeenEntries.Set(float64(state.Len()))
	p.logger.Logf("[INFO] initialized with %d entries, last modified %q", state.Len(), state.LastModified())
	return state, nil
}

// Poll makes a conditional request and returns entries not seen before, in feed order.
// Each returned id is marked seen before Poll returns. Not-modified responses and
// any failure return nothing and leave the state unchanged, failures are logged only.
func (p *Poller) Poll(ctx context.Context, state *State) []domain.Entry {
	p.logger.Logf("[DEBUG] checking feed %s", p.url)

	resp, err := p.fetch(ctx, state.LastModified())
	if err != nil {
		p.metrics.Polls.WithLabelValues("error").Inc()
		p.logger.Logf("[WARN] can't get feed: %v", err)
		return nil
	}
	if resp.notModified {
		p.metrics.Polls.WithLabelValues("not_modified").Inc()
		p.logger.Logf("[DEBUG] feed is not modified")
		return nil
	}

	entries, err := parseEntries(resp.body)
	if err != nil {
		p.metrics.Polls.WithLabelValues("error").Inc()
		p.logger.Logf("[WARN] can't parse feed: %v", err)
		return nil
	}

	res := make([]domain.Entry, 0)
	for _, e := range entries {
		if e.ID == "" {
			p.logger.Logf("[WARN] entry without id skipped, title %q", e.Title)
			continue
		}
		if !state.markSeen(e.ID) {
			continue
		}
		res = append(res, e)
	}
	if resp.lastModified != "" {
		state.setLastModified(resp.lastModified)
	}

	p.metrics.Polls.WithLabelValues("ok").Inc()
	p.metrics.NewEntries.Add(float64(len(res)))
	p.metrics.SeenEntries.Set(float64(state.Len()))
	p.logger.Logf("[INFO] %d entries in feed, %d new", len(entries), len(res))
	return res
}
