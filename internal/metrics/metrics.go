// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics holds the mediator's Prometheus collectors: per-node
// connection/rule/alert counters and prompt-broker latency, exposed by
// internal/health's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector the mediator exports.
type Metrics struct {
	ConnectionsTotal *prometheus.CounterVec
	RuleHitsTotal    *prometheus.CounterVec
	AlertsTotal      *prometheus.CounterVec

	NodesConnected prometheus.Gauge
	PromptsPending prometheus.Gauge

	PromptLatencySeconds prometheus.Histogram
}

// New creates a Metrics collector with every sub-metric initialized.
func New() *Metrics {
	return &Metrics{
		ConnectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediator_connections_total",
			Help: "Total number of decided connections recorded, by action.",
		}, []string{"node", "action"}),

		RuleHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediator_rule_hits_total",
			Help: "Total number of connections matched to a standing rule, by rule name.",
		}, []string{"node", "rule"}),

		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediator_alerts_total",
			Help: "Total number of alerts received, by priority.",
		}, []string{"node", "priority"}),

		NodesConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mediator_nodes_connected",
			Help: "Number of daemons currently connected.",
		}),

		PromptsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mediator_prompts_pending",
			Help: "Number of AskRule prompts awaiting a verdict.",
		}),

		PromptLatencySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mediator_prompt_latency_seconds",
			Help:    "Time from an AskRule prompt being registered to its verdict.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.ConnectionsTotal.Describe(ch)
	m.RuleHitsTotal.Describe(ch)
	m.AlertsTotal.Describe(ch)
	m.NodesConnected.Describe(ch)
	m.PromptsPending.Describe(ch)
	m.PromptLatencySeconds.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.ConnectionsTotal.Collect(ch)
	m.RuleHitsTotal.Collect(ch)
	m.AlertsTotal.Collect(ch)
	m.NodesConnected.Collect(ch)
	m.PromptsPending.Collect(ch)
	m.PromptLatencySeconds.Collect(ch)
}

// RecordConnection increments the connection counter for node/action,
// and the rule counter too when rule is non-empty.
func (m *Metrics) RecordConnection(node, action, rule string) {
	m.ConnectionsTotal.WithLabelValues(node, action).Inc()
	if rule != "" {
		m.RuleHitsTotal.WithLabelValues(node, rule).Inc()
	}
}

// RecordAlert increments the alert counter for node/priority.
func (m *Metrics) RecordAlert(node, priority string) {
	m.AlertsTotal.WithLabelValues(node, priority).Inc()
}

// Register registers m against reg (typically prometheus.DefaultRegisterer).
func (m *Metrics) Register(reg prometheus.Registerer) error {
	return reg.Register(m)
}
