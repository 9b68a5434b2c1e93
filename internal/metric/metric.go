// SPDX-License-Identifier: MIT
// Package metric holds the Prometheus collectors shared by the dataflow
// components. Collectors are registered on a caller-supplied registry; the
// core never exposes them over the network.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "algcore"

// Metrics contains the counters updated by pipes, the daemon and algorithms.
type Metrics struct {
	FramesConsumed  *prometheus.CounterVec // stream
	FramesRejected  *prometheus.CounterVec // stream, reason
	PipeSteps       *prometheus.CounterVec // pipe
	PipeTransitions *prometheus.CounterVec // pipe, state
	AlgorithmSteps  *prometheus.CounterVec // algorithm
	AlgorithmPanics *prometheus.CounterVec // algorithm
	Sessions        prometheus.Counter
	VirtualTime     prometheus.Gauge
}

// New creates the collectors without registering them.
func New() *Metrics {
	return &Metrics{
		FramesConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "daemon",
				Name:      "frames_consumed_total",
				Help:      "Frames appended to the signal aggregator",
			},
			[]string{"stream"},
		),
		FramesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "daemon",
				Name:      "frames_rejected_total",
				Help:      "Frames dropped before reaching the aggregator",
			},
			[]string{"stream", "reason"},
		),
		PipeSteps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipe",
				Name:      "delivered_total",
				Help:      "Values delivered from a source to a sink",
			},
			[]string{"pipe"},
		),
		PipeTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipe",
				Name:      "transitions_total",
				Help:      "Terminal state transitions (depleted, broken)",
			},
			[]string{"pipe", "state"},
		),
		AlgorithmSteps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "algorithm",
				Name:      "steps_total",
				Help:      "ProcessInput invocations per streaming algorithm",
			},
			[]string{"algorithm"},
		),
		AlgorithmPanics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "algorithm",
				Name:      "panics_total",
				Help:      "Recovered panics raised by streaming algorithms",
			},
			[]string{"algorithm"},
		),
		Sessions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "daemon",
				Name:      "sessions_total",
				Help:      "Processing sessions started",
			},
		),
		VirtualTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "simulator",
				Name:      "virtual_time_seconds",
				Help:      "Logical clock of the virtual-time simulator",
			},
		),
	}
}

// Collectors returns every collector, for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FramesConsumed,
		m.FramesRejected,
		m.PipeSteps,
		m.PipeTransitions,
		m.AlgorithmSteps,
		m.AlgorithmPanics,
		m.Sessions,
		m.VirtualTime,
	}
}

// Register adds all collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistered creates the collectors and registers them on reg.
func NewRegistered(reg prometheus.Registerer) (*Metrics, error) {
	m := New()
	if err := m.Register(reg); err != nil {
		return nil, err
	}
	return m, nil
}
