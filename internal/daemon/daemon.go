// SPDX-License-Identifier: MIT
/*
Package daemon runs one monitoring session: it decodes incoming frames into
the signal aggregator and steps every registered streaming algorithm after
each frame.

Lifecycle:
- New, then AddStreamingAlgorithm for each algorithm
- StartProcessing opens a session and resets every algorithm
- Consume* feeds frames; each accepted frame advances all algorithms
- EndProcessing calls EndStreaming exactly once per algorithm

Everything runs on the caller's goroutine. Hosts that feed frames from more
than one goroutine must serialise the calls.
*/
package daemon

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"algcore/internal/frame"
	applog "algcore/internal/log"
	"algcore/internal/metric"
	"algcore/internal/signal"
)

var (
	ErrNotProcessing     = errors.New("daemon: no active session")
	ErrAlreadyProcessing = errors.New("daemon: session already active")
)

type Daemon struct {
	agg   *signal.Aggregator
	algs  []*guarded
	order frame.ByteOrder

	session    uuid.UUID
	processing bool

	metrics *metric.Metrics
}

// Option configures a Daemon.
type Option func(*config)

type config struct {
	order    frame.ByteOrder
	metrics  *metric.Metrics
	capacity time.Duration
}

// WithByteOrder sets the order used for frames given as bare bytes.
func WithByteOrder(o frame.ByteOrder) Option {
	return func(c *config) { c.order = o }
}

// WithMetrics counts frames, algorithm steps and recovered panics.
func WithMetrics(m *metric.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithCapacity preallocates the aggregator for d of signal.
func WithCapacity(d time.Duration) Option {
	return func(c *config) { c.capacity = d }
}

func New(opts ...Option) *Daemon {
	cfg := config{order: frame.DefaultByteOrder}
	for _, opt := range opts {
		opt(&cfg)
	}

	var aggOpts []signal.Option
	if cfg.capacity > 0 {
		aggOpts = append(aggOpts, signal.WithCapacity(cfg.capacity))
	}

	return &Daemon{
		agg:     signal.NewAggregator(aggOpts...),
		order:   cfg.order,
		metrics: cfg.metrics,
	}
}

// AddStreamingAlgorithm registers alg for this and every later session.
// An algorithm added during a session is reset and starts at the current end
// of the signal; registration cannot be undone.
func (d *Daemon) AddStreamingAlgorithm(alg signal.Algorithm) {
	g := &guarded{alg: alg, name: algorithmName(alg), metrics: d.metrics}
	d.algs = append(d.algs, g)
	if d.processing {
		g.ResetState()
	}
	d.agg.Attach(g)
	applog.Debugf("Registered algorithm %s", g.name)
}

// StartProcessing opens a new session with an empty signal.
func (d *Daemon) StartProcessing() error {
	if d.processing {
		return ErrAlreadyProcessing
	}

	d.agg.Reset()
	for _, g := range d.algs {
		g.ResetState()
	}

	d.session = uuid.New()
	d.processing = true
	if d.metrics != nil {
		d.metrics.Sessions.Inc()
	}
	applog.Infow("Session started", "session", d.session.String(), "algorithms", len(d.algs))
	return nil
}

// EndProcessing closes the session and hands every algorithm the final view.
func (d *Daemon) EndProcessing() error {
	if !d.processing {
		return ErrNotProcessing
	}
	d.processing = false
	d.agg.Finish()

	ts, _ := d.agg.LastTimestamp(frame.StreamEEG)
	applog.Infow("Session ended",
		"session", d.session.String(),
		"eeg_samples", d.agg.Len(signal.EEG),
		"ir_samples", d.agg.Len(signal.IRLed),
		"last_eeg_ts", ts,
	)
	return nil
}

// Processing reports whether a session is active.
func (d *Daemon) Processing() bool { return d.processing }

// Session returns the id of the current or most recent session.
func (d *Daemon) Session() uuid.UUID { return d.session }

// ByteOrder returns the order used by ConsumeBytes and RawSink.
func (d *Daemon) ByteOrder() frame.ByteOrder { return d.order }

// Len returns the number of samples aggregated on ch in this session.
func (d *Daemon) Len(ch signal.Channel) int { return d.agg.Len(ch) }

// Consume decodes raw and ingests it.
func (d *Daemon) Consume(raw frame.RawFrame) error {
	if !d.processing {
		d.reject(raw.Stream, "inactive")
		return ErrNotProcessing
	}
	f, err := frame.Decode(raw)
	if err != nil {
		d.reject(raw.Stream, "malformed")
		return fmt.Errorf("consume %s frame: %w", raw.Stream, err)
	}
	return d.ingest(f)
}

// ConsumeBytes ingests b from stream s using the daemon's byte order.
func (d *Daemon) ConsumeBytes(s frame.Stream, b []byte) error {
	return d.Consume(frame.RawFrame{Stream: s, Bytes: b, Order: d.order})
}

func (d *Daemon) ConsumeEEG(f frame.EEG) error { return d.consumeTyped(f) }

func (d *Daemon) ConsumePAT(f frame.PAT) error { return d.consumeTyped(f) }

func (d *Daemon) consumeTyped(f frame.Typed) error {
	if !d.processing {
		d.reject(f.Stream(), "inactive")
		return ErrNotProcessing
	}
	return d.ingest(f)
}

func (d *Daemon) ingest(f frame.Typed) error {
	if err := d.agg.Append(f); err != nil {
		d.reject(f.Stream(), "unsupported")
		return err
	}
	if d.metrics != nil {
		d.metrics.FramesConsumed.WithLabelValues(f.Stream().String()).Inc()
	}
	d.agg.AdvanceAlgorithms()
	return nil
}

func (d *Daemon) reject(s frame.Stream, reason string) {
	if d.metrics != nil {
		d.metrics.FramesRejected.WithLabelValues(s.String(), reason).Inc()
	}
}
