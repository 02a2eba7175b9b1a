// Package metrics holds the process-wide Prometheus collectors. They count
// work done by the running process only; nothing is persisted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScanPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leanbrew_scan_passes_total",
		Help: "Scan passes run over a feed container.",
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "leanbrew_scan_duration_seconds",
		Help:    "Wall time of one scan pass.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	Items = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leanbrew_items_total",
		Help: "Feed items handled by scan passes, by outcome (kept, removed, skipped).",
	}, []string{"outcome"})

	Removals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leanbrew_removals_total",
		Help: "Removed items by triggering predicate.",
	}, []string{"category"})

	Sessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leanbrew_sessions_total",
		Help: "Observation session transitions (started, stopped, aborted).",
	}, []string{"event"})

	Navigations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leanbrew_navigations_total",
		Help: "Location changes seen by the navigation monitor.",
	})

	SinkDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leanbrew_sink_dropped_total",
		Help: "Events dropped because a sink's delivery queue was full.",
	}, []string{"sink"})
)
