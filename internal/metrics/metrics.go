// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Frame outcomes.
const (
	OutcomeStored     = "stored"
	OutcomeSelfTalk   = "self"
)

// Flush results.
const (
	FlushOK            = "ok"
	FlushSerializeFail = "serialize_error"
	FlushTransferFail  = "transfer_error"
	FlushRetried       = "retried"
)

var (
	// FramesTotal counts processed frames by what happened to them.
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netzone_frames_total",
			Help: "Total number of frames processed",
		},
		[]string{"mode", "outcome"},
	)

	// ReadErrorsTotal counts failed reads from the frame source.
	ReadErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netzone_read_errors_total",
			Help: "Total number of frame source read errors",
		},
		[]string{"mode"},
	)

	UnrecognizedLayersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "netzone_unrecognized_layers_total",
			Help: "Total number of decoded layers outside the recognized set",
		},
	)

	// ProtocolLabelsTotal counts frames by their resolved protocol label.
	ProtocolLabelsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netzone_protocol_labels_total",
			Help: "Total number of frames per protocol label",
		},
		[]string{"label"},
	)

	FlushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netzone_flushes_total",
			Help: "Total number of flush attempts by result",
		},
		[]string{"sender", "result"},
	)

	// BatchRecords tracks how many records each delivered batch carried.
	BatchRecords = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netzone_batch_records",
			Help:    "Number of flow records per delivered batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1, 2, 4, ..., 2048
		},
		[]string{"sender"},
	)

	FlushLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netzone_flush_latency_seconds",
			Help:    "Latency of a flush including serialization and transfer",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		},
		[]string{"sender"},
	)

	// StoreSize tracks the number of distinct flow keys awaiting the next flush.
	StoreSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netzone_store_records",
			Help: "Number of flow records currently held in the store",
		},
	)

	// CollectorRecordsTotal counts records merged by the reference collector.
	CollectorRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netzone_collector_records_total",
			Help: "Total number of flow records received by the collector",
		},
		[]string{"source"},
	)
)
