// SPDX-License-Identifier: MIT
/*
Package signal accumulates decoded frames into one continuous, append-only
sample sequence per channel and hands registered algorithms a view of what
they have not seen yet.

Each algorithm owns a cursor per channel. Advancing presents the samples
between the cursor and the current end, then moves the cursor to the end, so
every algorithm observes every sample exactly once and in arrival order,
regardless of how the others consume.

Frames are assumed to arrive in timestamp order per stream; nothing is
re-sorted.
*/
package signal

import (
	"errors"
	"fmt"
	"time"

	"algcore/internal/frame"
	"algcore/pkg/bitint"
)

var ErrUnsupportedFrame = errors.New("signal: unsupported frame type")

// Algorithm is a streaming consumer of the aggregated signal.
//
// A View is only valid during the call that received it.
type Algorithm interface {
	ResetState()
	ProcessInput(v View)
	EndStreaming(v View)
}

type consumer struct {
	alg    Algorithm
	cursor [numChannels]int
}

// Aggregator owns the channel buffers. It is not safe for concurrent use.
type Aggregator struct {
	data      [numChannels][]int32
	last      [2]uint32
	seen      [2]bool
	capacity  time.Duration
	consumers []*consumer
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCapacity preallocates every channel for d of signal, rounded up to a
// power of two samples.
func WithCapacity(d time.Duration) Option {
	return func(a *Aggregator) { a.capacity = d }
}

func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{}
	for _, opt := range opts {
		opt(a)
	}
	a.allocate()
	return a
}

func (a *Aggregator) allocate() {
	for _, ch := range Channels {
		n := 0
		if a.capacity > 0 {
			n = bitint.NextPowerOfTwo(int(a.capacity.Seconds() * ch.Spec().Rate))
		}
		a.data[ch] = make([]int32, 0, n)
	}
}

// Reset drops every sample and rewinds all cursors. Registered algorithms
// stay attached.
func (a *Aggregator) Reset() {
	for _, ch := range Channels {
		a.data[ch] = a.data[ch][:0]
	}
	a.last = [2]uint32{}
	a.seen = [2]bool{}
	for _, c := range a.consumers {
		c.cursor = [numChannels]int{}
	}
}

// Attach registers alg with its cursors at the current end; it never sees
// samples appended before it was attached.
func (a *Aggregator) Attach(alg Algorithm) {
	c := &consumer{alg: alg}
	for _, ch := range Channels {
		c.cursor[ch] = len(a.data[ch])
	}
	a.consumers = append(a.consumers, c)
}

// Algorithms returns the attached algorithms in registration order.
func (a *Aggregator) Algorithms() []Algorithm {
	out := make([]Algorithm, len(a.consumers))
	for i, c := range a.consumers {
		out[i] = c.alg
	}
	return out
}

// Append adds the samples of f to their channels.
func (a *Aggregator) Append(f frame.Typed) error {
	switch f := f.(type) {
	case frame.EEG:
		for _, s := range f.Samples {
			a.data[EEG] = append(a.data[EEG], int32(s))
		}
		a.stamp(frame.StreamEEG, f.Timestamp)
	case frame.PAT:
		a.data[IRLed] = append(a.data[IRLed], f.IRLed)
		a.data[AccelX] = append(a.data[AccelX], int32(f.Accel.X))
		a.data[AccelY] = append(a.data[AccelY], int32(f.Accel.Y))
		a.data[AccelZ] = append(a.data[AccelZ], int32(f.Accel.Z))
		a.data[Temperature1] = append(a.data[Temperature1], int32(f.Temperature[0]))
		a.data[Temperature2] = append(a.data[Temperature2], int32(f.Temperature[1]))
		a.stamp(frame.StreamAux, f.Timestamp)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedFrame, f)
	}
	return nil
}

func (a *Aggregator) stamp(s frame.Stream, ts uint32) {
	a.last[s] = ts
	a.seen[s] = true
}

// LastTimestamp returns the timestamp of the most recent frame of stream s.
func (a *Aggregator) LastTimestamp(s frame.Stream) (uint32, bool) {
	if int(s) >= len(a.last) {
		return 0, false
	}
	return a.last[s], a.seen[s]
}

// Len returns the number of samples stored for ch.
func (a *Aggregator) Len(ch Channel) int {
	if !ch.valid() {
		return 0
	}
	return len(a.data[ch])
}

// AdvanceAlgorithms presents each algorithm the samples past its cursor and
// moves the cursor to the end.
func (a *Aggregator) AdvanceAlgorithms() {
	for _, c := range a.consumers {
		c.alg.ProcessInput(a.advance(c))
	}
}

// Finish hands each algorithm its final view through EndStreaming.
func (a *Aggregator) Finish() {
	for _, c := range a.consumers {
		c.alg.EndStreaming(a.advance(c))
	}
}

func (a *Aggregator) advance(c *consumer) View {
	v := View{agg: a, from: c.cursor}
	for _, ch := range Channels {
		v.to[ch] = len(a.data[ch])
	}
	c.cursor = v.to
	return v
}
