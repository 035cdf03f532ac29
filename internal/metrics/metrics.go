package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ItemDispatches counts payroll item dispatches by path and outcome.
	ItemDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payroll",
		Name:      "item_dispatches_total",
		Help:      "Payroll item dispatches by payment path and outcome.",
	}, []string{"path", "outcome"})

	// WebhookEvents counts received webhook events by family and outcome.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payroll",
		Name:      "webhook_events_total",
		Help:      "Webhook events by family and processing outcome.",
	}, []string{"family", "outcome"})

	// PollTimeouts counts bounded polling loops that ran out of attempts.
	PollTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payroll",
		Name:      "poll_timeouts_total",
		Help:      "Attestation and receipt polls that exhausted their attempt budget.",
	}, []string{"kind"})

	// TransfersCompleted counts cross-chain transfers reaching COMPLETED.
	TransfersCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "payroll",
		Name:      "transfers_completed_total",
		Help:      "Cross-chain transfers that reached COMPLETED.",
	})

	// GatewayRequestDuration observes outbound gateway call latency.
	GatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "payroll",
		Name:      "gateway_request_duration_seconds",
		Help:      "Latency of outbound payment gateway requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
)
