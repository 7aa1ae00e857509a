package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rw_receipt_handler",
			Name:      "messages_received_total",
			Help:      "Kafka messages pulled by the worker",
		},
		[]string{"topic"},
	)

	ReceiptsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rw_receipt_handler",
			Name:      "sent_total",
			Help:      "Successfully delivered receipt emails",
		},
		[]string{"topic"},
	)

	ReceiptsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rw_receipt_handler",
			Name:      "failed_total",
			Help:      "Failed receipt jobs by reason",
		},
		[]string{"topic", "reason"},
	)

	DLQPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rw_receipt_handler",
			Name:      "dlq_total",
			Help:      "Jobs sent to DLQ by reason",
		},
		[]string{"topic", "reason"},
	)

	SendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rw_receipt_handler",
			Name:      "send_duration_seconds",
			Help:      "End-to-end processing latency per message",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	InflightJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rw_receipt_handler",
			Name:      "inflight_jobs",
			Help:      "Number of jobs currently being processed (semaphore depth)",
		},
	)
)
