// SPDX-License-Identifier: MIT
/*
Package pipe binds one port.Source to one port.Sink and moves one value per
step.

A pipe owns its source and only observes its sink through a weak reference.
It is Active until either the sink goes away (Broken) or the source runs dry
(Depleted); both states are terminal and further steps are no-ops. A pipe
over a port.Sized source with N values is Depleted right after its N-th
delivery; other sources are found empty on the step after the last value.
*/
package pipe

import (
	"time"

	"algcore/internal/frame"
	applog "algcore/internal/log"
	"algcore/internal/metric"
	"algcore/internal/port"
)

// State is the lifecycle state of a pipe.
type State uint8

const (
	Active State = iota
	Depleted
	Broken
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Depleted:
		return "depleted"
	case Broken:
		return "broken"
	default:
		return "unknown"
	}
}

// Stepper is the view of a pipe the simulator needs.
type Stepper interface {
	// StepAt moves one value, stamped with virtual time now.
	StepAt(now time.Duration)
	IsDepleted() bool
	IsBroken() bool
}

// Pipe moves values of type T from a source to a weakly held sink.
type Pipe[T any] struct {
	name  string
	src   port.Source[T]
	sink  port.WeakSink[T]
	state State
	stamp func(T, time.Duration) T

	metrics *metric.Metrics
}

var _ Stepper = (*Pipe[int])(nil)

// Option configures a Pipe.
type Option[T any] func(*Pipe[T])

// WithName labels the pipe in logs and metrics.
func WithName[T any](name string) Option[T] {
	return func(p *Pipe[T]) { p.name = name }
}

// WithStamp sets a function applied to each value before delivery with the
// virtual time it is emitted at.
func WithStamp[T any](fn func(T, time.Duration) T) Option[T] {
	return func(p *Pipe[T]) { p.stamp = fn }
}

// WithMetrics counts deliveries and terminal transitions.
func WithMetrics[T any](m *metric.Metrics) Option[T] {
	return func(p *Pipe[T]) { p.metrics = m }
}

// Timestamper is implemented by frames that can carry a millisecond stamp.
type Timestamper[T any] interface {
	WithTimestamp(ts uint32) T
}

// StampFrames stamps frame values with the virtual time in milliseconds.
func StampFrames[T Timestamper[T]]() Option[T] {
	return WithStamp[T](func(v T, now time.Duration) T {
		return v.WithTimestamp(uint32(now.Milliseconds()))
	})
}

var (
	_ Timestamper[frame.EEG] = frame.EEG{}
	_ Timestamper[frame.PAT] = frame.PAT{}
)

// New creates an Active pipe. The pipe takes ownership of src.
func New[T any](src port.Source[T], sink port.WeakSink[T], opts ...Option[T]) *Pipe[T] {
	p := &Pipe[T]{name: "pipe", src: src, sink: sink}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Step moves one value without stamping it.
func (p *Pipe[T]) Step() {
	p.step(0, false)
}

// StepAt moves one value, stamping it with now when a stamp is configured.
func (p *Pipe[T]) StepAt(now time.Duration) {
	p.step(now, true)
}

func (p *Pipe[T]) step(now time.Duration, stamped bool) {
	if p.state != Active {
		return
	}

	sink, ok := p.sink.Lookup()
	if !ok {
		p.transition(Broken)
		return
	}

	v, ok := p.src.Next()
	if !ok {
		p.transition(Depleted)
		return
	}

	if stamped && p.stamp != nil {
		v = p.stamp(v, now)
	}
	sink.Consume(v)

	if p.metrics != nil {
		p.metrics.PipeSteps.WithLabelValues(p.name).Inc()
	}

	// Sized sources let the pipe report depletion on the step that delivers
	// the last value instead of on the following one.
	if n, ok := port.Remaining(p.src); ok && n == 0 {
		p.transition(Depleted)
	}
}

func (p *Pipe[T]) transition(s State) {
	p.state = s
	applog.Debugf("Pipe %s: %s", p.name, s)
	if p.metrics != nil {
		p.metrics.PipeTransitions.WithLabelValues(p.name, s.String()).Inc()
	}
}

func (p *Pipe[T]) State() State     { return p.state }
func (p *Pipe[T]) IsDepleted() bool { return p.state == Depleted }
func (p *Pipe[T]) IsBroken() bool   { return p.state == Broken }
func (p *Pipe[T]) Name() string     { return p.name }
