// Package metrics exposes Prometheus counters and histograms for the API
// server, the static export and the importers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the metric collectors and the registry they live on.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	enabled   bool
	registry  *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	exportPlayers  *prometheus.CounterVec
	exportDuration prometheus.Histogram

	rowsSkipped *prometheus.CounterVec

	distributionRefreshes prometheus.Counter
	distributionPlayers   prometheus.Gauge
}

// NewManager creates a manager on a fresh registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "tennis",
		subsystem: "metrics",
		buckets:   prometheus.DefBuckets,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.init()
	return m
}

func (m *Manager) init() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   m.buckets,
	}, []string{"route", "method"})

	m.exportPlayers = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "export_players_total",
		Help:      "Players processed by the static export, by result.",
	}, []string{"result"})

	m.exportDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "export_duration_seconds",
		Help:      "Wall time of a full static export run.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	m.rowsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_skipped_total",
		Help:      "Malformed or uncodable rows skipped, by source.",
	}, []string{"source"})

	m.distributionRefreshes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "distribution_refreshes_total",
		Help:      "Tour distribution snapshots rebuilt.",
	})

	m.distributionPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "distribution_players",
		Help:      "Players contributing to the last distribution snapshot.",
	})
}

// Registry returns the registry the collectors are registered on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTPRequest records one served request.
func (m *Manager) ObserveHTTPRequest(route, method string, status int, d time.Duration) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ExportPlayer records one exported player.
func (m *Manager) ExportPlayer(ok bool) {
	if !m.enabled {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.exportPlayers.WithLabelValues(result).Inc()
}

// ObserveExport records the duration of a full export run.
func (m *Manager) ObserveExport(d time.Duration) {
	if !m.enabled {
		return
	}
	m.exportDuration.Observe(d.Seconds())
}

// RowsSkipped adds n skipped rows for source.
func (m *Manager) RowsSkipped(source string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.rowsSkipped.WithLabelValues(source).Add(float64(n))
}

// DistributionRefreshed records a rebuilt snapshot over players players.
func (m *Manager) DistributionRefreshed(players int) {
	if !m.enabled {
		return
	}
	m.distributionRefreshes.Inc()
	m.distributionPlayers.Set(float64(players))
}
