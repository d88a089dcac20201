// Package notify delivers rendered bulletins to configured targets. Router sends every message
// to general targets and, for escalated bulletins, to emergency targets as well.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"
)

// Target is a single delivery destination
type Target interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// TargetError is a failure of one target
type TargetError struct {
	Target string
	Err    error
}

func (e TargetError) Error() string { return fmt.Sprintf("%s: %v", e.Target, e.Err) }

// DeliveryError collects failures of all targets which couldn't deliver a message
type DeliveryError struct {
	Failures []TargetError
}

func (e *DeliveryError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return "delivery failed: " + strings.Join(msgs, "; ")
}

// Unwrap returns errors of failed targets
func (e *DeliveryError) Unwrap() []error {
	res := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		res = append(res, f.Err)
	}
	return res
}

// Router fans a message out to targets
type Router struct {
	general   []Target
	emergency []Target
	logger    lgr.L
}

// RouterConfig defines targets of the router
type RouterConfig struct {
	General   []Target
	Emergency []Target // used for escalated messages only
	Logger    lgr.L
}

// NewRouter makes a router
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Logger == nil {
		cfg.Logger = lgr.Default()
	}
	return &Router{general: cfg.General, emergency: cfg.Emergency, logger: cfg.Logger}
}

// Notify sends text to all general targets and, if escalate set, to all emergency targets.
// A failing target doesn't stop delivery to the rest, failures returned as *DeliveryError.
func (r *Router) Notify(ctx context.Context, text string, escalate bool) error {
	targets := r.general
	if escalate {
		targets = append(append([]Target{}, r.general...), r.emergency...)
	}

	var failures []TargetError
	for _, t := range targets {
		r.logger.Logf("[DEBUG] send to %s", t.Name())
		if err := t.Send(ctx, text); err != nil {
			r.logger.Logf("[WARN] can't send to %s: %v", t.Name(), err)
			failures = append(failures, TargetError{Target: t.Name(), Err: err})
		}
	}
	if len(failures) > 0 {
		return &DeliveryError{Failures: failures}
	}
	return nil
}

// Targets returns names of general and emergency targets
func (r *Router) Targets() (general, emergency []string) {
	for _, t := range r.general {
		general = append(general, t.Name())
	}
	for _, t := range r.emergency {
		emergency = append(emergency, t.Name())
	}
	return general, emergency
}

// Log writes messages to the logger, handy as a general target and for dry runs
type Log struct {
	logger lgr.L
}

// NewLog makes a log target
func NewLog(logger lgr.L) *Log {
	if logger == nil {
		logger = lgr.Default()
	}
	return &Log{logger: logger}
}

// Name of the target
func (l *Log) Name() string { return "log" }

// Send logs text, never fails
func (l *Log) Send(_ context.Context, text string) error {
	l.logger.Logf("[INFO] bulletin\n%s", text)
	return nil
}
