// Package dispatch routes new feed entries to bulletin handlers running concurrently.
package dispatch

import (
	"context"
	"sync"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/semaphore"

	"github.com/umputun/quakewatch/pkg/domain"
	"github.com/umputun/quakewatch/pkg/metrics"
)

// Handler processes a single entry of a known bulletin kind
type Handler func(ctx context.Context, entry domain.Entry) error

// Handlers maps bulletin kinds to handlers, nil handler ignores the kind
type Handlers struct {
	Hypocenter Handler
	Intensity  Handler
	Combined   Handler
}

// Dispatcher classifies entries and runs a handler per entry. Dispatch never waits for
// handlers, the number of handlers running at once is limited by MaxWorkers.
type Dispatcher struct {
	handlers Handlers
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	logger   lgr.L
	metrics  *metrics.Metrics
}

// Config holds dispatcher parameters
type Config struct {
	Handlers   Handlers
	MaxWorkers int // default 5
	Logger     lgr.L
	Metrics    *metrics.Metrics
}

// New makes a dispatcher
func New(cfg Config) *Dispatcher {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = lgr.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(nil)
	}
	return &Dispatcher{
		handlers: cfg.Handlers,
		sem:      semaphore.NewWeighted(int64(cfg.MaxWorkers)),
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

// Dispatch makes a single pass over entries in order, starting a handler for each entry of
// a known kind. Unknown titles are skipped. Returns number of started handlers.
// Handlers are not bound to ctx cancellation, they are short-lived and allowed to finish.
func (d *Dispatcher) Dispatch(ctx context.Context, entries []domain.Entry) int {
	hctx := context.WithoutCancel(ctx)
	started := 0
	for _, e := range entries {
		kind := domain.KindOf(e.Title)
		h := d.handlerFor(kind)
		if h == nil {
			d.metrics.Ignored.Inc()
			d.logger.Logf("[DEBUG] skip entry %s, title %q", e.ID, e.Title)
			continue
		}

		d.metrics.Dispatched.WithLabelValues(kind.String()).Inc()
		d.logger.Logf("[INFO] dispatch %s entry %s", kind, e.ID)
		d.wg.Add(1)
		go d.run(hctx, kind, h, e)
		started++
	}
	return started
}

// Wait blocks until all started handlers are done
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) handlerFor(kind domain.Kind) Handler {
	switch kind {
	case domain.KindHypocenter:
		return d.handlers.Hypocenter
	case domain.KindIntensity:
		return d.handlers.Intensity
	case domain.KindCombined:
		return d.handlers.Combined
	default:
		return nil
	}
}

func (d *Dispatcher) run(ctx context.Context, kind domain.Kind, h Handler, e domain.Entry) {
	defer d.wg.Done()

	if err := d.sem.Acquire(ctx, 1); err != nil {
		d.logger.Logf("[WARN] entry %s not handled: %v", e.ID, err)
		return
	}
	defer d.sem.Release(1)

	d.metrics.InFlight.Inc()
	defer d.metrics.InFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Logf("[ERROR] %s handler panic for entry %s: %v", kind, e.ID, r)
		}
	}()

	if err := h(ctx, e); err != nil {
		d.logger.Logf("[WARN] %s handler failed for entry %s: %v", kind, e.ID, err)
	}
}
