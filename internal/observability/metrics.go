package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "station_digest"

// Metrics holds the Prometheus counters, histograms, and gauges for the digest pipeline.
type Metrics struct {
	Refreshes       *prometheus.CounterVec   // labels: kind, outcome={applied,stale,error}
	FetchDuration   *prometheus.HistogramVec // labels: kind
	PipelineRunning prometheus.Gauge

	// Publishing.
	DigestsPublished prometheus.Counter
	PublishErrors    prometheus.Counter

	// Derived state.
	WarningLevel  *prometheus.GaugeVec // labels: region; 0 green .. 3 red
	ForecastCards prometheus.Gauge

	// Sources.
	HistoryCache *prometheus.CounterVec // labels: result={hit,miss}
	MQTTReadings *prometheus.CounterVec // labels: outcome={applied,stale,invalid}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Refreshes,
		m.FetchDuration,
		m.PipelineRunning,
		m.DigestsPublished,
		m.PublishErrors,
		m.WarningLevel,
		m.ForecastCards,
		m.HistoryCache,
		m.MQTTReadings,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Refresh cycles by source kind and outcome.",
		}, []string{"kind", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of upstream fetches by source kind.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		DigestsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digests_published_total",
			Help:      "Total digests written to the sink.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total failed digest publishes.",
		}),
		WarningLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "warning_level",
			Help:      "Aggregated warning level per region (0 green, 1 grey, 2 yellow, 3 red).",
		}, []string{"region"}),
		ForecastCards: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forecast_cards",
			Help:      "Number of forecast cards in the current digest.",
		}),
		HistoryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_cache_total",
			Help:      "Weather Underground history cache lookups by result.",
		}, []string{"result"}),
		MQTTReadings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mqtt_readings_total",
			Help:      "Readings received over MQTT by outcome.",
		}, []string{"outcome"}),
	}
}
