package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects analysis and timing measurements on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	PhaseDuration  *prometheus.HistogramVec
	PhaseRuns      *prometheus.CounterVec
	CategoryCounts *prometheus.GaugeVec
	TimingAverage  *prometheus.GaugeVec
	TimingBlocks   *prometheus.GaugeVec
}

// NewMetrics creates and registers all tidystat metrics.
func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.PhaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tidystat_phase_duration_seconds",
			Help:    "Wall time of each analysis phase in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
		[]string{"phase"},
	)

	m.PhaseRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidystat_phase_runs_total",
			Help: "Analysis phases run, by outcome",
		},
		[]string{"phase", "outcome"},
	)

	m.CategoryCounts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tidystat_category_count",
			Help: "Classified diagnostic lines from the last run of each phase",
		},
		[]string{"phase", "category"},
	)

	m.TimingAverage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tidystat_timing_average",
			Help: "Average of a timing metric across the blocks of a log",
		},
		[]string{"source", "metric"},
	)

	m.TimingBlocks = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tidystat_timing_blocks",
			Help: "Number of blocks read from a timing log",
		},
		[]string{"source"},
	)

	m.Registry.MustRegister(
		m.PhaseDuration,
		m.PhaseRuns,
		m.CategoryCounts,
		m.TimingAverage,
		m.TimingBlocks,
	)

	return m
}

// ObservePhase records the outcome of one analysis phase.
func (m *Metrics) ObservePhase(phase string, elapsed time.Duration, categories map[string]int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.PhaseRuns.WithLabelValues(phase, outcome).Inc()
	m.PhaseDuration.WithLabelValues(phase).Observe(elapsed.Seconds())
	for category, n := range categories {
		m.CategoryCounts.WithLabelValues(phase, category).Set(float64(n))
	}
}

// ObserveTiming records the averages computed for one timing log.
func (m *Metrics) ObserveTiming(source string, blocks int, averages map[string]float64) {
	m.TimingBlocks.WithLabelValues(source).Set(float64(blocks))
	for metric, v := range averages {
		m.TimingAverage.WithLabelValues(source, metric).Set(v)
	}
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// StartMetricsServer serves /metrics on addr until ctx is done.
func StartMetricsServer(ctx context.Context, addr string, m *Metrics) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ServeMetrics(ctx, ln, m)
}

// ServeMetrics serves /metrics on an existing listener until ctx is done.
func ServeMetrics(ctx context.Context, ln net.Listener, m *Metrics) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	LogDebug("Starting metrics server", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
