// Package metrics метрики Prometheus для синхронизации
package metrics

import (
	"net/http"
	"time"

	"farmsurvey/internal/domain/survey"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SyncMetrics счетчики и гистограммы пакетной синхронизации
type SyncMetrics struct {
	transactions  *prometheus.CounterVec
	duration      prometheus.Histogram
	outcomes      *prometheus.CounterVec
	auditFailures prometheus.Counter
	rateLimited   prometheus.Counter
	liveClients   prometheus.Gauge
}

// NewSyncMetrics создает метрики и регистрирует их в registry
func NewSyncMetrics(registry *prometheus.Registry) (*SyncMetrics, error) {
	m := &SyncMetrics{
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "farmsurvey",
				Name:      "sync_transactions_total",
				Help:      "Total number of sync batches processed",
			},
			[]string{"status"}, // success, error
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "farmsurvey",
				Name:      "sync_duration_seconds",
				Help:      "Time taken to apply a sync batch",
				// 10ms .. ~40s
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "farmsurvey",
				Name:      "sync_records_total",
				Help:      "Total number of records applied, by outcome",
			},
			[]string{"outcome"}, // inserted, updated, rejected, failed
		),
		auditFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "farmsurvey",
				Name:      "sync_audit_failures_total",
				Help:      "Total number of sync log entries that could not be written",
			},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "farmsurvey",
				Name:      "sync_rate_limited_total",
				Help:      "Total number of sync requests rejected by the per-device limiter",
			},
		),
		liveClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "farmsurvey",
				Name:      "live_feed_clients",
				Help:      "Number of connected live sync feed clients",
			},
		),
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe реализует prometheus.Collector
func (m *SyncMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.transactions.Describe(ch)
	m.duration.Describe(ch)
	m.outcomes.Describe(ch)
	m.auditFailures.Describe(ch)
	m.rateLimited.Describe(ch)
	m.liveClients.Describe(ch)
}

// Collect реализует prometheus.Collector
func (m *SyncMetrics) Collect(ch chan<- prometheus.Metric) {
	m.transactions.Collect(ch)
	m.duration.Collect(ch)
	m.outcomes.Collect(ch)
	m.auditFailures.Collect(ch)
	m.rateLimited.Collect(ch)
	m.liveClients.Collect(ch)
}

func (m *SyncMetrics) ObserveTransaction(success bool, d time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.transactions.WithLabelValues(status).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *SyncMetrics) ObserveOutcome(o survey.Outcome) {
	m.outcomes.WithLabelValues(string(o)).Inc()
}

func (m *SyncMetrics) AuditFailure() {
	m.auditFailures.Inc()
}

func (m *SyncMetrics) RateLimited() {
	m.rateLimited.Inc()
}

func (m *SyncMetrics) SetLiveClients(n int) {
	m.liveClients.Set(float64(n))
}

// Handler отдает метрики registry в формате Prometheus
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}
