// Package metrics defines prometheus collectors used by the poller, dispatcher and handlers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quakewatch"

// Metrics holds all counters and gauges of the pipeline
type Metrics struct {
	Polls          *prometheus.CounterVec // labels: result={ok,not_modified,error}
	NewEntries     prometheus.Counter
	SeenEntries    prometheus.Gauge
	Dispatched     *prometheus.CounterVec // labels: kind={hypocenter,intensity,combined}
	Ignored        prometheus.Counter
	InFlight       prometheus.Gauge
	HandlerErrors  *prometheus.CounterVec // labels: stage={fetch,parse,notify,store}
	Notifications  *prometheus.CounterVec // labels: escalated={true,false}
	HandleDuration prometheus.Histogram
}

// New creates metrics and registers them with reg. Nil reg leaves collectors unregistered,
// handy for tests and for running without the status server.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_polls_total",
			Help:      "Feed poll cycles by result.",
		}, []string{"result"}),
		NewEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_new_entries_total",
			Help:      "Feed entries accepted as new.",
		}),
		SeenEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_seen_entries",
			Help:      "Size of the seen entry id set.",
		}),
		Dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatched_total",
			Help:      "Entries handed to a handler by bulletin kind.",
		}, []string{"kind"}),
		Ignored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_total",
			Help:      "Entries with unknown bulletin type.",
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "handlers_in_flight",
			Help:      "Handlers currently running.",
		}),
		HandlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_errors_total",
			Help:      "Handler failures by stage.",
		}, []string{"stage"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Delivered notifications.",
		}, []string{"escalated"}),
		HandleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handle_duration_seconds",
			Help:      "Duration of fetch, parse and notify for a single entry.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Polls,
			m.NewEntries,
			m.SeenEntries,
			m.Dispatched,
			m.Ignored,
			m.InFlight,
			m.HandlerErrors,
			m.Notifications,
			m.HandleDuration,
		)
	}
	return m
}
