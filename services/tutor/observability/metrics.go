// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the tutor
// service: request counters, turn latency, agent loop depth, tool call
// outcomes, and challenge results.
//
// Metrics are exposed via the /metrics endpoint.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal
// locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics.
const metricsNamespace = "quantumiq"

// Metrics holds the tutor service's Prometheus metrics. Initialize once
// at startup via InitMetrics().
type Metrics struct {
	// RequestsTotal counts API requests by endpoint and status.
	// Labels: endpoint (chat, simulate, simulate_step, challenge_start,
	// challenge_submit, progress), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures request latency by endpoint.
	RequestDurationSeconds *prometheus.HistogramVec

	// AgentIterations observes reasoning rounds per chat turn.
	AgentIterations prometheus.Histogram

	// DegradedTurnsTotal counts chat turns that fell back.
	DegradedTurnsTotal prometheus.Counter

	// ToolCallsTotal counts tool executions by tool and status.
	// Labels: tool, status (success, error)
	ToolCallsTotal *prometheus.CounterVec

	// SimulationsTotal counts simulation runs by status.
	// Labels: status (success, invalid, error)
	SimulationsTotal *prometheus.CounterVec

	// ChallengeSubmissionsTotal counts scored submissions by verdict.
	// Labels: verdict (passed, failed)
	ChallengeSubmissionsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance, set by InitMetrics().
var DefaultMetrics *Metrics

// InitMetrics creates and registers all metrics against the default
// registry. Call once at startup; a second call panics on duplicate
// registration.
func InitMetrics() *Metrics {
	DefaultMetrics = &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "Total API requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		RequestDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "request_duration_seconds",
				Help:      "Request latency by endpoint",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 15, 45},
			},
			[]string{"endpoint"},
		),

		AgentIterations: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "agent_iterations",
				Help:      "Reasoning rounds per chat turn",
				Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8},
			},
		),

		DegradedTurnsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "degraded_turns_total",
				Help:      "Chat turns that returned fallback text",
			},
		),

		ToolCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "tool_calls_total",
				Help:      "Tool executions by tool and status",
			},
			[]string{"tool", "status"},
		),

		SimulationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "simulations_total",
				Help:      "Simulation runs by status",
			},
			[]string{"status"},
		),

		ChallengeSubmissionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "challenge_submissions_total",
				Help:      "Scored challenge submissions by verdict",
			},
			[]string{"verdict"},
		),
	}
	return DefaultMetrics
}

// RecordRequest records a completed request.
func (m *Metrics) RecordRequest(endpoint string, success bool, seconds float64) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.RequestDurationSeconds.WithLabelValues(endpoint).Observe(seconds)
}

// RecordTurn records a chat turn's loop depth and degradation.
func (m *Metrics) RecordTurn(iterations int, degraded bool) {
	m.AgentIterations.Observe(float64(iterations))
	if degraded {
		m.DegradedTurnsTotal.Inc()
	}
}

// RecordToolCall records one tool execution.
func (m *Metrics) RecordToolCall(tool string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
}

// RecordSimulation records a simulation run outcome.
func (m *Metrics) RecordSimulation(status string) {
	m.SimulationsTotal.WithLabelValues(status).Inc()
}

// RecordSubmission records a scored challenge submission.
func (m *Metrics) RecordSubmission(passed bool) {
	verdict := "failed"
	if passed {
		verdict = "passed"
	}
	m.ChallengeSubmissionsTotal.WithLabelValues(verdict).Inc()
}
