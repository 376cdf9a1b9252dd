package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	routeTotal             *prometheus.CounterVec
	retrievalFailuresTotal *prometheus.CounterVec
	answersTotal           *prometheus.CounterVec
	truncationsTotal       *prometheus.CounterVec
	evidenceFacts          *prometheus.HistogramVec
	evidenceChunks         *prometheus.HistogramVec
	askDuration            *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgar_rag",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edgar_rag",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "edgar_rag",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	routeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgar_rag",
			Subsystem: "router",
			Name:      "route_total",
			Help:      "Total questions routed by strategy.",
		},
		[]string{"service", "strategy"},
	)
	retrievalFailuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgar_rag",
			Subsystem: "retrieval",
			Name:      "failures_total",
			Help:      "Total retrieval branch failures.",
		},
		[]string{"service", "branch"},
	)
	answersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgar_rag",
			Subsystem: "answers",
			Name:      "total",
			Help:      "Total answers by outcome (answered, partial, no_evidence, error).",
		},
		[]string{"service", "outcome"},
	)
	truncationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgar_rag",
			Subsystem: "retrieval",
			Name:      "fact_truncations_total",
			Help:      "Total fact queries that hit the row cap.",
		},
		[]string{"service"},
	)
	evidenceFacts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edgar_rag",
			Subsystem: "retrieval",
			Name:      "facts_per_question",
			Help:      "Distribution of fact rows retrieved per question.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"service"},
	)
	evidenceChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edgar_rag",
			Subsystem: "retrieval",
			Name:      "chunks_per_question",
			Help:      "Distribution of narrative chunks retrieved per question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	askDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edgar_rag",
			Subsystem: "answers",
			Name:      "duration_seconds",
			Help:      "End-to-end question answering duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		routeTotal,
		retrievalFailuresTotal,
		answersTotal,
		truncationsTotal,
		evidenceFacts,
		evidenceChunks,
		askDuration,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		routeTotal:             routeTotal,
		retrievalFailuresTotal: retrievalFailuresTotal,
		answersTotal:           answersTotal,
		truncationsTotal:       truncationsTotal,
		evidenceFacts:          evidenceFacts,
		evidenceChunks:         evidenceChunks,
		askDuration:            askDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordRoute(service, strategy string) {
	if strategy == "" {
		strategy = "unknown"
	}
	m.routeTotal.WithLabelValues(service, strategy).Inc()
}

func (m *HTTPServerMetrics) RecordBranchFailure(service, branch string) {
	if branch == "" {
		branch = "unknown"
	}
	m.retrievalFailuresTotal.WithLabelValues(service, branch).Inc()
}

func (m *HTTPServerMetrics) RecordAnswer(service, outcome string, factCount, chunkCount int, truncated bool, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.answersTotal.WithLabelValues(service, outcome).Inc()
	m.evidenceFacts.WithLabelValues(service).Observe(float64(factCount))
	m.evidenceChunks.WithLabelValues(service).Observe(float64(chunkCount))
	m.askDuration.WithLabelValues(service).Observe(duration.Seconds())
	if truncated {
		m.truncationsTotal.WithLabelValues(service).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
