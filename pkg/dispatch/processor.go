package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/quakewatch/pkg/domain"
	"github.com/umputun/quakewatch/pkg/jmaxml"
	"github.com/umputun/quakewatch/pkg/metrics"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier
//go:generate moq -out mocks/archive.go -pkg mocks -skip-ensure -fmt goimports . Archive

// Fetcher retrieves bulletin documents
type Fetcher interface {
	FetchWithRetry(ctx context.Context, url string) ([]byte, error)
}

// Notifier delivers rendered bulletins
type Notifier interface {
	Notify(ctx context.Context, text string, escalate bool) error
}

// Archive keeps delivered bulletins
type Archive interface {
	SaveRecord(ctx context.Context, rec domain.Record) error
}

// Processor is the standard bulletin handler: fetch, parse, render, notify and archive
type Processor struct {
	fetcher   Fetcher
	notifier  Notifier
	archive   Archive
	locations []string
	logger    lgr.L
	metrics   *metrics.Metrics
	now       func() time.Time
}

// ProcessorConfig holds processor dependencies. Archive is optional.
type ProcessorConfig struct {
	Fetcher   Fetcher
	Notifier  Notifier
	Archive   Archive
	Locations []string // names of prefectures or areas triggering escalation
	Logger    lgr.L
	Metrics   *metrics.Metrics
}

// NewProcessor makes a processor
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Logger == nil {
		cfg.Logger = lgr.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(nil)
	}
	return &Processor{
		fetcher:   cfg.Fetcher,
		notifier:  cfg.Notifier,
		archive:   cfg.Archive,
		locations: cfg.Locations,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		now:       time.Now,
	}
}

// Handlers returns dispatcher handlers for all known kinds
func (p *Processor) Handlers() Handlers {
	return Handlers{
		Hypocenter: p.handler(domain.KindHypocenter),
		Intensity:  p.handler(domain.KindIntensity),
		Combined:   p.handler(domain.KindCombined),
	}
}

func (p *Processor) handler(kind domain.Kind) Handler {
	return func(ctx context.Context, entry domain.Entry) error {
		return p.Handle(ctx, kind, entry)
	}
}

// Handle processes one entry. Fetch and parse failures are returned, delivery failure is
// logged only as the entry stays seen either way.
func (p *Processor) Handle(ctx context.Context, kind domain.Kind, entry domain.Entry) error {
	start := p.now()
	defer func() { p.metrics.HandleDuration.Observe(time.Since(start).Seconds()) }()

	data, err := p.fetcher.FetchWithRetry(ctx, entry.Link)
	if err != nil {
		p.metrics.HandlerErrors.WithLabelValues("fetch").Inc()
		return fmt.Errorf("fetch bulletin %s: %w", entry.ID, err)
	}

	bulletin, err := jmaxml.Parse(data, kind)
	if err != nil {
		p.metrics.HandlerErrors.WithLabelValues("parse").Inc()
		return fmt.Errorf("bulletin %s: %w", entry.ID, err)
	}

	text := jmaxml.Render(bulletin)
	escalate := bulletin.MentionsAny(p.locations)

	if err := p.notifier.Notify(ctx, text, escalate); err != nil {
		p.metrics.HandlerErrors.WithLabelValues("notify").Inc()
		p.logger.Logf("[WARN] can't deliver bulletin %s: %v", entry.ID, err)
		return nil
	}
	p.metrics.Notifications.WithLabelValues(strconv.FormatBool(escalate)).Inc()
	p.logger.Logf("[INFO] delivered %s bulletin %s, event %s, escalated %v", kind, entry.ID, bulletin.Head.EventID, escalate)

	if p.archive == nil {
		return nil
	}
	rec := domain.Record{
		EntryID:    entry.ID,
		EventID:    bulletin.Head.EventID,
		Kind:       kind.String(),
		Title:      bulletin.Head.Title,
		Link:       entry.Link,
		ReportTime: bulletin.Head.ReportTime,
		Text:       text,
		Escalated:  escalate,
		CreatedAt:  p.now(),
	}
	if err := p.archive.SaveRecord(ctx, rec); err != nil {
		p.metrics.HandlerErrors.WithLabelValues("store").Inc()
		p.logger.Logf("[WARN] can't save bulletin %s: %v", entry.ID, err)
	}
	return nil
}
