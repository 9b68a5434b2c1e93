// SPDX-License-Identifier: MIT
/*
Package port defines the typed endpoints that connect producers to consumers.

A Source is a finite, restartable producer. A Sink consumes values and never
reports failure to its caller. Sinks are owned by whoever created them: an
Endpoint wraps a sink for its owner, and other components only ever hold a
WeakSink obtained from it, so they can observe the sink going away without
keeping it alive.
*/
package port

import (
	"sync/atomic"
	"weak"
)

// Source produces a finite sequence of values.
type Source[T any] interface {
	// Reset rewinds the cursor to the first value.
	Reset()
	// Next returns the next value, or false once the source is exhausted.
	Next() (T, bool)
	// Values materialises every value from the current position onward.
	Values() []T
}

// Sized is implemented by sources that know how many values they still hold.
type Sized interface {
	Remaining() int
}

// Remaining reports how many values src still holds. The second result is
// false when src cannot tell without consuming.
func Remaining[T any](src Source[T]) (int, bool) {
	if s, ok := src.(Sized); ok {
		if n := s.Remaining(); n >= 0 {
			return n, true
		}
	}
	return 0, false
}

// Sink consumes values. Failures are the sink's own concern.
type Sink[T any] interface {
	Consume(T)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc[T any] func(T)

func (f SinkFunc[T]) Consume(v T) { f(v) }

// Endpoint owns a sink on behalf of its creator.
type Endpoint[T any] struct {
	sink   Sink[T]
	closed atomic.Bool
}

// NewEndpoint wraps s. The returned pointer is the owning reference: once it
// is closed or becomes unreachable, every WeakSink derived from it reports
// the sink as gone.
func NewEndpoint[T any](s Sink[T]) *Endpoint[T] {
	return &Endpoint[T]{sink: s}
}

// Consume forwards v unless the endpoint has been closed.
func (e *Endpoint[T]) Consume(v T) {
	if e.closed.Load() {
		return
	}
	e.sink.Consume(v)
}

// Close releases the sink. Safe to call more than once.
func (e *Endpoint[T]) Close() {
	e.closed.Store(true)
}

// Closed reports whether Close has been called.
func (e *Endpoint[T]) Closed() bool {
	return e.closed.Load()
}

// Weak returns a non-owning reference to e.
func (e *Endpoint[T]) Weak() WeakSink[T] {
	return WeakSink[T]{ptr: weak.Make(e)}
}

// WeakSink observes an Endpoint without keeping it alive.
type WeakSink[T any] struct {
	ptr weak.Pointer[Endpoint[T]]
}

// Lookup returns the sink while its endpoint is open and reachable.
// A false result means the sink is gone; it is not an error.
func (w WeakSink[T]) Lookup() (Sink[T], bool) {
	e := w.ptr.Value()
	if e == nil || e.closed.Load() {
		return nil, false
	}
	return e.sink, true
}
