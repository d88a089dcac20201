// Package scheduler runs the poll loop: baseline the feed, then periodically poll it and hand
// new entries to the dispatcher until the context is canceled.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/jonboulle/clockwork"

	"github.com/umputun/quakewatch/pkg/domain"
	"github.com/umputun/quakewatch/pkg/feed"
)

//go:generate moq -out mocks/poller.go -pkg mocks -skip-ensure -fmt goimports . Poller
//go:generate moq -out mocks/dispatcher.go -pkg mocks -skip-ensure -fmt goimports . Dispatcher

// Poller reads the feed and reports new entries
type Poller interface {
	Initialize(ctx context.Context) (*feed.State, error)
	Poll(ctx context.Context, state *feed.State) []domain.Entry
}

// Dispatcher starts handlers for entries
type Dispatcher interface {
	Dispatch(ctx context.Context, entries []domain.Entry) int
	Wait()
}

// Phase of the poll loop
type Phase string

// loop phases
const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseReady         Phase = "ready"
	PhasePolling       Phase = "polling"
	PhaseIdle          Phase = "idle"
	PhaseStopped       Phase = "stopped"
)

// Status is a snapshot of the loop
type Status struct {
	Phase        Phase     `json:"phase"`
	StartedAt    time.Time `json:"started_at"`
	LastPoll     time.Time `json:"last_poll,omitzero"`
	Polls        int       `json:"polls"`
	Seen         int       `json:"seen"`
	LastModified string    `json:"last_modified"`
	Dispatched   int       `json:"dispatched"`
	Interval     string    `json:"interval"`
}

// Scheduler is the poll loop
type Scheduler struct {
	poller     Poller
	dispatcher Dispatcher
	interval   time.Duration
	skipFirst  bool
	clock      clockwork.Clock
	logger     lgr.L

	mu         sync.RWMutex
	phase      Phase
	state      *feed.State
	startedAt  time.Time
	lastPoll   time.Time
	polls      int
	dispatched int
}

// Params defines scheduler dependencies and settings
type Params struct {
	Poller     Poller
	Dispatcher Dispatcher
	Interval   time.Duration // wait between polls, default 30s
	SkipFirst  bool          // cold start, entries present at startup are never dispatched
	Clock      clockwork.Clock
	Logger     lgr.L
}

// NewScheduler makes a scheduler
func NewScheduler(params Params) *Scheduler {
	if params.Interval <= 0 {
		params.Interval = 30 * time.Second
	}
	if params.Clock == nil {
		params.Clock = clockwork.NewRealClock()
	}
	if params.Logger == nil {
		params.Logger = lgr.Default()
	}
	return &Scheduler{
		poller:     params.Poller,
		dispatcher: params.Dispatcher,
		interval:   params.Interval,
		skipFirst:  params.SkipFirst,
		clock:      params.Clock,
		logger:     params.Logger,
		phase:      PhaseUninitialized,
	}
}

// Run builds the initial state and polls every interval until ctx is canceled.
// With SkipFirst the state is seeded from the current feed and a failure is returned,
// otherwise the loop starts with an empty state and polls right away.
// On cancellation Run waits for running handlers and returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.startedAt = s.clock.Now()
	s.mu.Unlock()
	s.logger.Logf("[INFO] poll loop started, interval %v, skip first %v", s.interval, s.skipFirst)

	var state *feed.State
	if s.skipFirst {
		st, err := s.poller.Initialize(ctx)
		if err != nil {
			s.setPhase(PhaseStopped)
			return fmt.Errorf("initialize feed state: %w", err)
		}
		state = st
		s.ready(state)
	} else {
		state = feed.NewState()
		s.ready(state)
		s.pollOnce(ctx, state)
	}

	defer func() {
		s.logger.Logf("[INFO] poll loop stopping, waiting for handlers")
		s.dispatcher.Wait()
		s.setPhase(PhaseStopped)
		s.logger.Logf("[INFO] poll loop stopped")
	}()

	for {
		s.setPhase(PhaseIdle)
		s.logger.Logf("[DEBUG] wait %v", s.interval)
		select {
		case <-ctx.Done():
			return nil
		case <-s.clock.After(s.interval):
		}
		s.pollOnce(ctx, state)
	}
}

// Status returns current loop status
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := Status{
		Phase:      s.phase,
		StartedAt:  s.startedAt,
		LastPoll:   s.lastPoll,
		Polls:      s.polls,
		Dispatched: s.dispatched,
		Interval:   s.interval.String(),
	}
	if s.state != nil {
		res.Seen = s.state.Len()
		res.LastModified = s.state.LastModified()
	}
	return res
}

// pollOnce runs a single polling cycle. Entries are marked seen by the poller before dispatch.
func (s *Scheduler) pollOnce(ctx context.Context, state *feed.State) {
	s.setPhase(PhasePolling)
	entries := s.poller.Poll(ctx, state)

	started := 0
	if len(entries) > 0 {
		started = s.dispatcher.Dispatch(ctx, entries)
	}

	s.mu.Lock()
	s.lastPoll = s.clock.Now()
	s.polls++
	s.dispatched += started
	s.mu.Unlock()
}

func (s *Scheduler) ready(state *feed.State) {
	s.mu.Lock()
	s.state = state
	s.phase = PhaseReady
	s.mu.Unlock()
}

func (s *Scheduler) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}
