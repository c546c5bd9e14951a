// Package metrics exposes pipeline metrics in Prometheus format.
//
// Every method is safe to call on a nil *Metrics, so components can be built
// without metrics in tests and CLI runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "audio_summarizer"

// Run and chunk results
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Pipeline stages
const (
	StageProbe      = "probe"
	StageSplit      = "split"
	StageTranscribe = "transcribe"
	StageGenerate   = "generate"
	StageUpload     = "upload"
)

// Metrics holds the pipeline collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal            *prometheus.CounterVec
	ChunksPerRun         prometheus.Histogram
	ChunkTranscriptions  *prometheus.CounterVec
	TranscriptionRetries prometheus.Counter
	StageDuration        *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by outcome",
		}, []string{"status"}),
		ChunksPerRun: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunks_per_run",
			Help:      "Number of audio chunks planned per run",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 24, 32, 64, 99},
		}),
		ChunkTranscriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_transcriptions_total",
			Help:      "Total number of chunk transcription calls by result",
		}, []string{"result"}),
		TranscriptionRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_retries_total",
			Help:      "Total number of retried chunk transcription calls",
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
	}
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RunFinished(err error) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) ChunksPlanned(n int) {
	if m == nil {
		return
	}
	m.ChunksPerRun.Observe(float64(n))
}

func (m *Metrics) ChunkTranscribed(err error) {
	if m == nil {
		return
	}
	m.ChunkTranscriptions.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) TranscriptionRetried() {
	if m == nil {
		return
	}
	m.TranscriptionRetries.Inc()
}

// ObserveStage records the time since start under stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}
