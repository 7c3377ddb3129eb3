// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// It adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the run labels (job, stage, status / job, kind) onto Prometheus
//     labels.
//   - Pushing collected metrics to a Pushgateway on Flush instead of exposing
//     a scrape endpoint, which a one-shot batch job cannot usefully serve.
//
// All Prometheus-specific dependencies stay inside this package so the rest
// of the project can swap backends without changes.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"tripstats/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // tripstats_stage_total
	stageDuration *prometheus.SummaryVec // tripstats_stage_duration_seconds
	rowCounter    *prometheus.CounterVec // tripstats_rows_total
}

// NewBackend constructs a Pushgateway backend. jobName doubles as the
// Pushgateway grouping key; gatewayURL is the base URL of the gateway.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "tripstats"
	}

	reg := prometheus.NewRegistry()

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripstats_stage_total",
			Help: "Pipeline stage executions, partitioned by job, stage, and status.",
		},
		[]string{"job", "stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "tripstats_stage_duration_seconds",
			Help: "Pipeline stage wall-clock durations in seconds.",
		},
		[]string{"job", "stage", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripstats_rows_total",
			Help: "Trip rows seen per job, partitioned by disposition kind.",
		},
		[]string{"job", "kind"},
	)

	reg.MustRegister(stageCounter, stageDuration, rowCounter)

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
	}, nil
}

// IncCounter implements metrics.Backend.IncCounter.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "tripstats_stage_total":
		b.stageCounter.With(prometheus.Labels{
			"job":    labels["job"],
			"stage":  labels["stage"],
			"status": labels["status"],
		}).Add(delta)
	case "tripstats_rows_total":
		b.rowCounter.With(prometheus.Labels{
			"job":  labels["job"],
			"kind": labels["kind"],
		}).Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend.ObserveHistogram.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "tripstats_stage_duration_seconds" {
		return
	}
	b.stageDuration.With(prometheus.Labels{
		"job":    labels["job"],
		"stage":  labels["stage"],
		"status": labels["status"],
	}).Observe(value)
}

// Flush pushes all collected metrics to the Pushgateway.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
