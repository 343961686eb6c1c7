package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics — Prometheus коллекторы HTTP слоя и конвейера изменений Item.
type Metrics struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	stageDuration *prometheus.HistogramVec
	orphanedBlobs *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// MustNewMetrics регистрирует коллекторы в reg. Ошибка регистрации — паника, как у promauto.
// В тестах передаём свежий prometheus.NewRegistry().
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockpile",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method, route pattern and status code.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stockpile",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by method and route pattern.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stockpile",
				Subsystem: "item_pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration of each item pipeline stage.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op", "stage", "status"},
		),
		orphanedBlobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockpile",
				Subsystem: "item_pipeline",
				Name:      "orphaned_blobs_total",
				Help:      "Blobs written to the store whose item record was never persisted.",
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.stageDuration, m.orphanedBlobs)

	m.gatherer = prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest учитывает завершённый HTTP запрос.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveStage учитывает стадию конвейера. err == nil — status "ok".
func (m *Metrics) ObserveStage(op, stage string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.stageDuration.WithLabelValues(op, stage, status).Observe(time.Since(start).Seconds())
}

// OrphanedBlob учитывает blob, оставшийся в хранилище без записи.
func (m *Metrics) OrphanedBlob(op string) {
	if m == nil {
		return
	}
	m.orphanedBlobs.WithLabelValues(op).Inc()
}
