package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger daemon.
type Metrics struct {
	// --- Engine ---
	CallsExecuted     *prometheus.CounterVec
	CallDuration      *prometheus.HistogramVec
	CallsDeduplicated *prometheus.CounterVec
	EngineSequence    prometheus.Gauge
	StagedWrites      prometheus.Histogram

	// --- Ingestion ---
	CallsReceived *prometheus.CounterVec
	ParseErrors   *prometheus.CounterVec
	IngestLatency prometheus.Histogram

	// --- Channels & backpressure ---
	ChannelSize        *prometheus.GaugeVec
	ChannelCapacity    *prometheus.GaugeVec
	ChannelUtilization *prometheus.GaugeVec
	PublishDrops       prometheus.Counter

	// --- Receipt publishing ---
	ReceiptsPublished *prometheus.CounterVec

	// --- Persistence ---
	ReceiptsWritten     prometheus.Counter
	PersistBatchSize    prometheus.Histogram
	PersistBatchDur     prometheus.Histogram
	PersistErrors       *prometheus.CounterVec
	PersistRetry        prometheus.Counter
	PersistLastSequence prometheus.Gauge
	DedupLookupDur      prometheus.Histogram

	// --- HTTP API ---
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics. Call it
// once per process; promauto panics on duplicate registration.
func NewMetrics() *Metrics {
	latencyBuckets := []float64{
		0.000001, 0.000005, 0.00001, 0.000025, 0.00005,
		0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.005, 0.01,
	}

	ingestBuckets := []float64{
		0.00001, 0.000025, 0.00005, 0.0001, 0.00025,
		0.0005, 0.001, 0.002, 0.005, 0.01,
	}

	return &Metrics{
		// Engine
		CallsExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ooga_calls_executed_total",
			Help: "Calls executed by the engine, by opcode and outcome",
		}, []string{"opcode", "status"}),

		CallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ooga_call_duration_seconds",
			Help:    "Time to execute a single call",
			Buckets: latencyBuckets,
		}, []string{"opcode"}),

		CallsDeduplicated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ooga_calls_deduplicated_total",
			Help: "Duplicate calls caught, by tier (lru/db)",
		}, []string{"tier"}),

		EngineSequence: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ooga_engine_sequence",
			Help: "Next call sequence number",
		}),

		StagedWrites: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ooga_staged_writes_per_call",
			Help:    "Keys committed per call",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		}),

		// Ingestion
		CallsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ooga_calls_received_total",
			Help: "Calls received from NATS, by subject",
		}, []string{"subject"}),

		ParseErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ooga_call_parse_errors_total",
			Help: "Inbound messages rejected before execution",
		}, []string{"reason"}),

		IngestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ooga_ingest_to_result_seconds",
			Help:    "NATS receive to engine result",
			Buckets: ingestBuckets,
		}),

		// Channels & backpressure
		ChannelSize: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ooga_channel_size",
			Help: "Current items in channel",
		}, []string{"name"}),

		ChannelCapacity: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ooga_channel_capacity",
			Help: "Channel capacity (constant)",
		}, []string{"name"}),

		ChannelUtilization: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ooga_channel_utilization",
			Help: "Channel size / capacity (0.0-1.0)",
		}, []string{"name"}),

		PublishDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ooga_publish_drops_total",
			Help: "Receipts dropped due to full publish channel",
		}),

		// Receipt publishing
		ReceiptsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ooga_receipts_published_total",
			Help: "Receipts published to NATS, by status",
		}, []string{"status"}),

		// Persistence
		ReceiptsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ooga_persist_receipts_written_total",
			Help: "Receipts written to Postgres",
		}),

		PersistBatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ooga_persist_batch_size",
			Help:    "Receipts per batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),

		PersistBatchDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ooga_persist_batch_duration_seconds",
			Help:    "Postgres batch write duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		PersistErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ooga_persist_errors_total",
			Help: "Persistence errors",
		}, []string{"error_type"}),

		PersistRetry: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ooga_persist_retry_total",
			Help: "Persistence retries",
		}),

		PersistLastSequence: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ooga_persist_last_sequence",
			Help: "Last persisted receipt sequence",
		}),

		DedupLookupDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ooga_dedup_db_lookup_duration_seconds",
			Help:    "Postgres dedup lookup latency",
			Buckets: latencyBuckets,
		}),

		// HTTP API
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ooga_http_requests_total",
			Help: "HTTP API requests",
		}, []string{"route", "code"}),

		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ooga_http_request_duration_seconds",
			Help:    "HTTP API latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"route"}),
	}
}

// SetChannelMetrics updates channel utilization metrics.
func (m *Metrics) SetChannelMetrics(name string, size, capacity int) {
	m.ChannelSize.WithLabelValues(name).Set(float64(size))
	m.ChannelCapacity.WithLabelValues(name).Set(float64(capacity))
	if capacity > 0 {
		m.ChannelUtilization.WithLabelValues(name).Set(float64(size) / float64(capacity))
	}
}
