package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 分析流水线运行指标
// 热路径只做原子自增，采集时经 GaugeFunc 桥接到 prometheus
type Metrics struct {
	FramesProcessed atomic.Uint64
	DetectionsKept  atomic.Uint64

	ActiveRuns    atomic.Int64
	RunsCompleted atomic.Uint64
	RunsCancelled atomic.Uint64
	RunsFailed    atomic.Uint64

	ArtifactBytes atomic.Uint64
	LastRunMs     atomic.Uint64

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vtime_frames_processed_total",
			Help: "Total frames ingested into aggregators",
		},
		func() float64 { return float64(m.FramesProcessed.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vtime_detections_total",
			Help: "Total detections kept after class filtering",
		},
		func() float64 { return float64(m.DetectionsKept.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vtime_active_runs",
			Help: "Number of analysis pipelines currently running",
		},
		func() float64 { return float64(m.ActiveRuns.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vtime_runs_completed_total",
			Help: "Total runs finished successfully",
		},
		func() float64 { return float64(m.RunsCompleted.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vtime_runs_cancelled_total",
			Help: "Total runs cancelled by the caller",
		},
		func() float64 { return float64(m.RunsCancelled.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vtime_runs_failed_total",
			Help: "Total runs ended with an error",
		},
		func() float64 { return float64(m.RunsFailed.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vtime_artifact_bytes_total",
			Help: "Total bytes of exported artifacts",
		},
		func() float64 { return float64(m.ArtifactBytes.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vtime_last_run_ms",
			Help: "Wall time of the most recently finished run in milliseconds",
		},
		func() float64 { return float64(m.LastRunMs.Load()) },
	))
}

// ObserveRunEnd 记录一次运行的终态
func (m *Metrics) ObserveRunEnd(status string, elapsed time.Duration) {
	switch status {
	case "completed":
		m.RunsCompleted.Add(1)
	case "cancelled":
		m.RunsCancelled.Add(1)
	default:
		m.RunsFailed.Add(1)
	}
	m.LastRunMs.Store(uint64(elapsed.Milliseconds()))
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
