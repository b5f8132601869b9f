package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "disaster_prep"

// Metrics holds the Prometheus collectors shared by the services.
type Metrics struct {
	AlertsIngested   *prometheus.CounterVec // labels: source
	AlertFetchErrors prometheus.Counter
	AlertCacheReads  *prometheus.CounterVec // labels: result={hit,miss,error}
	DegradedReplies  *prometheus.CounterVec // labels: component={alerts,resources,checklist}

	ChecklistMaterialized prometheus.Counter
	ChecklistToggles      *prometheus.CounterVec // labels: outcome={ok,not_found,error}

	PollDuration      *prometheus.HistogramVec // labels: source
	StreamSubscribers prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		AlertsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_ingested_total",
			Help:      "New alerts persisted from external feeds.",
		}, []string{"source"}),
		AlertFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_fetch_errors_total",
			Help:      "Failed reads of the alert store.",
		}),
		AlertCacheReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_cache_reads_total",
			Help:      "Fallback reads of the alert cache by result.",
		}, []string{"result"}),
		DegradedReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_replies_total",
			Help:      "Replies served from a fallback instead of the store.",
		}, []string{"component"}),
		ChecklistMaterialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checklist_materialized_total",
			Help:      "Checklists created from a template on first access.",
		}),
		ChecklistToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checklist_toggles_total",
			Help:      "Checklist completion changes by outcome.",
		}, []string{"outcome"}),
		PollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_poll_duration_seconds",
			Help:      "Duration of one external feed poll.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),
		StreamSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alert_stream_subscribers",
			Help:      "Connected alert stream clients.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AlertsIngested,
		m.AlertFetchErrors,
		m.AlertCacheReads,
		m.DegradedReplies,
		m.ChecklistMaterialized,
		m.ChecklistToggles,
		m.PollDuration,
		m.StreamSubscribers,
	)
	return m
}

// NewMetricsForTesting returns unregistered collectors so tests can build
// as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
