package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/black-roland/homeassistant-yandex-speechkit/internal/speecherr"
)

// Adapter labels
const (
	AdapterSTT   = "stt"
	AdapterTTS   = "tts"
	AdapterProxy = "proxy"
)

// Metrics contains all Prometheus metrics for the SpeechKit bridge.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	// Adapter call metrics
	Requests  *prometheus.CounterVec
	Successes *prometheus.CounterVec
	Failures  *prometheus.CounterVec
	Duration  *prometheus.HistogramVec

	// Payload metrics
	AudioChunksSent     prometheus.Counter
	SynthesizedBytes    prometheus.Histogram
	EmptyAudioChunks    prometheus.Counter
	TruncatedMessages   prometheus.Counter
	ActiveSTTWebsockets prometheus.Gauge

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates all metrics on a dedicated registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speechkit_requests_total",
			Help: "Total number of adapter calls",
		}, []string{"adapter"}),
		Successes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speechkit_successes_total",
			Help: "Total number of adapter calls that produced a payload",
		}, []string{"adapter"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speechkit_failures_total",
			Help: "Total number of adapter calls that produced no payload",
		}, []string{"adapter", "reason"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "speechkit_request_duration_seconds",
			Help:    "Duration of adapter calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}, []string{"adapter"}),

		AudioChunksSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "speechkit_stt_audio_chunks_sent_total",
			Help: "Total number of audio chunks forwarded to recognition",
		}),
		SynthesizedBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "speechkit_tts_audio_bytes",
			Help:    "Size of synthesized audio payloads",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to ~4MB
		}),
		EmptyAudioChunks: factory.NewCounter(prometheus.CounterOpts{
			Name: "speechkit_tts_empty_chunks_total",
			Help: "Total number of empty audio chunks skipped during synthesis",
		}),
		TruncatedMessages: factory.NewCounter(prometheus.CounterOpts{
			Name: "speechkit_tts_truncated_messages_total",
			Help: "Total number of messages truncated before synthesis",
		}),
		ActiveSTTWebsockets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "speechkit_stt_websocket_clients",
			Help: "Current number of connected streaming recognition clients",
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speechkit_http_requests_total",
			Help: "Total number of HTTP API requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "speechkit_http_request_duration_seconds",
			Help:    "Duration of HTTP API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveSuccess records a call that produced a payload
func (m *Metrics) ObserveSuccess(adapter string, started time.Time) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(adapter).Inc()
	m.Successes.WithLabelValues(adapter).Inc()
	m.Duration.WithLabelValues(adapter).Observe(time.Since(started).Seconds())
}

// ObserveFailure records a call that produced no payload
func (m *Metrics) ObserveFailure(adapter string, err error, started time.Time) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(adapter).Inc()
	m.Failures.WithLabelValues(adapter, string(speecherr.ReasonOf(err))).Inc()
	m.Duration.WithLabelValues(adapter).Observe(time.Since(started).Seconds())
}

// ChunkSent counts one forwarded audio chunk
func (m *Metrics) ChunkSent() {
	if m == nil {
		return
	}
	m.AudioChunksSent.Inc()
}

// EmptyChunk counts one skipped empty synthesis chunk
func (m *Metrics) EmptyChunk() {
	if m == nil {
		return
	}
	m.EmptyAudioChunks.Inc()
}

// Truncated counts one truncated message
func (m *Metrics) Truncated() {
	if m == nil {
		return
	}
	m.TruncatedMessages.Inc()
}

// Synthesized records the size of a synthesized payload
func (m *Metrics) Synthesized(size int) {
	if m == nil {
		return
	}
	m.SynthesizedBytes.Observe(float64(size))
}

// WebsocketConnected adjusts the connected streaming client gauge by delta
func (m *Metrics) WebsocketConnected(delta int) {
	if m == nil {
		return
	}
	m.ActiveSTTWebsockets.Add(float64(delta))
}

// ObserveHTTP records one served HTTP request
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
