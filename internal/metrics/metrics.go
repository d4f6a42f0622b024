// Package metrics exposes the module's Prometheus instrumentation.
// The unmatched-zone and row-overflow counters are the observable
// surface for conditions the report layout otherwise degrades on
// silently.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EntriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gfr_entries_created_total",
		Help: "Daily entries inserted.",
	})

	ReportsCompiled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gfr_reports_compiled_total",
		Help: "Report templates compiled and written.",
	})

	UnmatchedZones = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gfr_report_unmatched_zone_total",
		Help: "Entries dropped from the positional listing because their zone matched no template label.",
	})

	RowOverflows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gfr_report_row_overflow_total",
		Help: "Entries placed past their zone's row window.",
	})

	RenderFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gfr_render_failures_total",
		Help: "Failed invocations of the external PDF renderer.",
	})

	CompileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gfr_report_compile_seconds",
		Help:    "Time spent compiling a report template.",
		Buckets: prometheus.DefBuckets,
	})
)
