package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records what the explain endpoint and the relay do. All methods are safe to call on a nil
// *Metrics, in which case nothing is recorded.
//
// Metrics:
//   - deepthought_requests_total: handled requests by status code
//   - deepthought_request_duration_seconds: time to full response, streams included
//   - deepthought_upstream_failures_total: non-2xx upstream answers by status code
//   - deepthought_tokens_relayed_total: token frames written to clients
//   - deepthought_malformed_chunks_total: upstream data lines that failed to decode
//   - deepthought_streams_active: pumps currently running
//   - deepthought_stream_duration_seconds: pump lifetime
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  prometheus.Histogram
	upstreamFailures *prometheus.CounterVec
	tokensRelayed    prometheus.Counter
	malformedChunks  prometheus.Counter
	streamsActive    prometheus.Gauge
	streamDuration   prometheus.Histogram
}

const namespace = "deepthought"

// New creates the metrics and registers them on a private registry, so that several instances can
// live in one process (tests do that).
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of requests handled by the public listener",
		}, []string{"status"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of requests in seconds, including streamed answers",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_failures_total",
			Help:      "Total number of non-2xx answers from the completion API",
		}, []string{"code"}),
		tokensRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_relayed_total",
			Help:      "Total number of token frames written to clients",
		}),
		malformedChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_chunks_total",
			Help:      "Total number of upstream data lines that could not be decoded",
		}),
		streamsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "streams_active",
			Help:      "Number of answer streams currently being relayed",
		}),
		streamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stream_duration_seconds",
			Help:      "Lifetime of relayed answer streams in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.upstreamFailures,
		m.tokensRelayed,
		m.malformedChunks,
		m.streamsActive,
		m.streamDuration,
	)

	return m
}

// Handler exposes the registry in the Prometheus exposition format. A nil *Metrics serves 404s.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry returns the underlying registry, or nil for a nil *Metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	m.requestDuration.Observe(d.Seconds())
}

// UpstreamFailure records a non-2xx answer from the completion API.
func (m *Metrics) UpstreamFailure(code int) {
	if m == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(strconv.Itoa(code)).Inc()
}

// TokenRelayed records one token frame written to a client.
func (m *Metrics) TokenRelayed() {
	if m == nil {
		return
	}
	m.tokensRelayed.Inc()
}

// MalformedChunk records an upstream data line that was skipped.
func (m *Metrics) MalformedChunk() {
	if m == nil {
		return
	}
	m.malformedChunks.Inc()
}

// StreamStarted marks a pump as running.
func (m *Metrics) StreamStarted() {
	if m == nil {
		return
	}
	m.streamsActive.Inc()
}

// StreamEnded marks a pump as finished after running for d.
func (m *Metrics) StreamEnded(d time.Duration) {
	if m == nil {
		return
	}
	m.streamsActive.Dec()
	m.streamDuration.Observe(d.Seconds())
}
