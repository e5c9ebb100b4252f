// Package monitoring exposes planner metrics over Prometheus.
package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mealsmith/v1/internal/ports/outbound"
)

// MetricsCollector records generation observations and serves the
// Prometheus exposition endpoint.
type MetricsCollector struct {
	logger *zap.Logger
	server *http.Server

	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	generationsActive  prometheus.Gauge
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	return &MetricsCollector{
		logger: logger.Named("metrics"),

		generationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_generations_total",
				Help: "Total number of completed plan generations by outcome",
			},
			[]string{"outcome"},
		),
		generationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planner_generation_duration_seconds",
				Help:    "Plan generation duration in seconds by outcome",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
		generationsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "planner_generations_active",
				Help: "Number of plan generations currently in flight",
			},
		),
	}
}

// ObserveGeneration records one finished generation run.
func (m *MetricsCollector) ObserveGeneration(outcome string, duration time.Duration) {
	m.generationsTotal.WithLabelValues(outcome).Inc()
	m.generationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// GenerationStarted marks a run as in flight.
func (m *MetricsCollector) GenerationStarted() {
	m.generationsActive.Inc()
}

// GenerationFinished marks a run as no longer in flight.
func (m *MetricsCollector) GenerationFinished() {
	m.generationsActive.Dec()
}

// Start serves /metrics, plus /health and /live when handlers are given, on
// the given port until Stop is called.
func (m *MetricsCollector) Start(port int, health, live http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if health != nil {
		mux.Handle("/health", health)
	}
	if live != nil {
		mux.Handle("/live", live)
	}

	m.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	m.logger.Info("Metrics endpoint listening", zap.Int("port", port))

	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the exposition endpoint down.
func (m *MetricsCollector) Stop(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

// compile-time interface check
var _ outbound.MetricsRecorder = (*MetricsCollector)(nil)
