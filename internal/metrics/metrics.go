// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	sendTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gabiad_send_total",
		Help: "Send attempts by message type and outcome",
	}, []string{"type", "outcome"}) // outcome=success|rejected|error

	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gabiad_upstream_requests_total",
		Help: "Upstream API calls by operation and outcome",
	}, []string{"operation", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gabiad_upstream_request_duration_seconds",
		Help:    "Upstream API call latency by operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	resultPollTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gabiad_result_poll_total",
		Help: "Background result poll attempts by outcome",
	}, []string{"outcome"}) // outcome=delivered|pending|failed|error

	pendingMessages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gabiad_pending_messages",
		Help: "Messages awaiting a delivery result (last poll cycle)",
	})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gabiad_circuit_breaker_state",
		Help: "Circuit breaker state (1 for the active state)",
	}, []string{"state"}) // state=closed|open|half_open

	// Operational metrics
	configValidationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gabiad_config_validation_errors_total",
		Help: "Total number of configuration validation errors",
	})
)

func IncSend(smsType, outcome string) { sendTotal.WithLabelValues(smsType, outcome).Inc() }

func ObserveUpstream(operation, outcome string, seconds float64) {
	upstreamRequests.WithLabelValues(operation, outcome).Inc()
	upstreamDuration.WithLabelValues(operation).Observe(seconds)
}

func IncResultPoll(outcome string) { resultPollTotal.WithLabelValues(outcome).Inc() }
func RecordPendingMessages(n int)  { pendingMessages.Set(float64(n)) }

func SetBreakerState(state string) {
	for _, s := range []string{"closed", "open", "half_open"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		breakerState.WithLabelValues(s).Set(v)
	}
}

func IncConfigValidationError() { configValidationErrors.Inc() }
