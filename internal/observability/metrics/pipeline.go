// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the retrieval/answer pipeline on a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchTotal        *prometheus.CounterVec
	searchDuration     *prometheus.HistogramVec
	answerConfidence   prometheus.Histogram
	generationDuration prometheus.Histogram
	corpusSize         prometheus.Gauge
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total search requests by mode and outcome.",
		},
		[]string{"service", "mode", "status"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search duration in seconds by mode.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "mode"},
	)
	answerConfidence := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "answer",
			Name:      "confidence",
			Help:      "Confidence score distribution of synthesized answers.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	generationDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "answer",
			Name:      "generation_duration_seconds",
			Help:      "End-to-end answer pipeline duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	corpusSize := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docqa",
			Subsystem: "corpus",
			Name:      "documents",
			Help:      "Number of indexed documents.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal, requestDuration, requestInFlight,
		searchTotal, searchDuration,
		answerConfidence, generationDuration, corpusSize,
	)

	return &PipelineMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		searchTotal:        searchTotal,
		searchDuration:     searchDuration,
		answerConfidence:   answerConfidence,
		generationDuration: generationDuration,
		corpusSize:         corpusSize,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) ObserveRequest(service, method, path, status string, duration time.Duration) {
	m.requestTotal.WithLabelValues(service, method, path, status).Inc()
	m.requestDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

func (m *PipelineMetrics) RequestStarted()  { m.requestInFlight.Inc() }
func (m *PipelineMetrics) RequestFinished() { m.requestInFlight.Dec() }

func (m *PipelineMetrics) ObserveSearch(service, mode string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.searchTotal.WithLabelValues(service, mode, status).Inc()
	m.searchDuration.WithLabelValues(service, mode).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveAnswer(confidence float64, duration time.Duration) {
	m.answerConfidence.Observe(confidence)
	m.generationDuration.Observe(duration.Seconds())
}

func (m *PipelineMetrics) SetCorpusSize(n int) {
	m.corpusSize.Set(float64(n))
}
