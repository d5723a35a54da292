// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus counters for the answer pipeline.
// Everything registers on a private registry so tests can create
// independent instances without double-registration panics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal  prometheus.Counter
	RequestsFailed prometheus.Counter
	SearchFailures prometheus.Counter
	SourceOutcomes *prometheus.CounterVec
	TokensRelayed  prometheus.Counter
	StageDuration  *prometheus.HistogramVec
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "answer_requests_total",
			Help: "Answer requests received.",
		}),
		RequestsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "answer_requests_failed_total",
			Help: "Answer requests that terminated with an error event.",
		}),
		SearchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "answer_search_failures_total",
			Help: "Search provider calls that failed or returned nothing.",
		}),
		SourceOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "answer_source_outcomes_total",
			Help: "Per-source fetch outcomes by result.",
		}, []string{"outcome"}),
		TokensRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "answer_tokens_relayed_total",
			Help: "Generation tokens relayed to clients.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "answer_stage_duration_seconds",
			Help:    "Wall time spent in each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestsFailed,
		m.SearchFailures,
		m.SourceOutcomes,
		m.TokensRelayed,
		m.StageDuration,
	)
	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
