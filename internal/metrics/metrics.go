// Package metrics exposes prometheus instrumentation for batch runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	windowsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gitcohort",
		Name:      "windows_computed_total",
		Help:      "Number of cohort windows classified.",
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gitcohort",
		Name:      "report_cache_hits_total",
		Help:      "Report requests served from the cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gitcohort",
		Name:      "report_cache_misses_total",
		Help:      "Report requests that required full recomputation.",
	})
	eventsRead = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gitcohort",
		Name:      "ledger_events_read_total",
		Help:      "Qualifying events read from the activity ledger.",
	})
	scopesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gitcohort",
		Name:      "warm_scopes_failed_total",
		Help:      "Scope computations aborted during cache warming.",
	})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gitcohort",
		Name:      "warm_run_duration_seconds",
		Help:      "Wall-clock duration of full warm runs.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

// RecordWindowsComputed adds n classified windows.
func RecordWindowsComputed(n int) { windowsComputed.Add(float64(n)) }

// RecordCacheHit counts a report served from the cache.
func RecordCacheHit() { cacheHits.Inc() }

// RecordCacheMiss counts a report that required recomputation.
func RecordCacheMiss() { cacheMisses.Inc() }

// RecordEventsRead adds n ledger events read.
func RecordEventsRead(n int) { eventsRead.Add(float64(n)) }

// RecordScopeFailed counts an aborted scope computation.
func RecordScopeFailed() { scopesFailed.Inc() }

// ObserveRunDuration records the duration of one warm run in seconds.
func ObserveRunDuration(seconds float64) { runDuration.Observe(seconds) }

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
