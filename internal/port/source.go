// SPDX-License-Identifier: MIT
package port

// SliceSource replays a fixed slice of values.
type SliceSource[T any] struct {
	values []T
	pos    int
}

// FromSlice returns a source over values. The slice is not copied.
func FromSlice[T any](values []T) *SliceSource[T] {
	return &SliceSource[T]{values: values}
}

// Zeros returns a source of n zero values.
func Zeros[T any](n int) *SliceSource[T] {
	return FromSlice(make([]T, n))
}

// FromIndex returns a source of n values produced by fn(0) .. fn(n-1).
func FromIndex[T any](fn func(i int) T, n int) *SliceSource[T] {
	values := make([]T, n)
	for i := range values {
		values[i] = fn(i)
	}
	return FromSlice(values)
}

func (s *SliceSource[T]) Reset() { s.pos = 0 }

func (s *SliceSource[T]) Next() (T, bool) {
	if s.pos >= len(s.values) {
		var zero T
		return zero, false
	}
	v := s.values[s.pos]
	s.pos++
	return v, true
}

func (s *SliceSource[T]) Values() []T {
	return Drain[T](s)
}

// Len returns the total number of values, independent of the cursor.
func (s *SliceSource[T]) Len() int { return len(s.values) }

func (s *SliceSource[T]) Remaining() int { return len(s.values) - s.pos }

// Drain collects every remaining value of src.
func Drain[T any](src Source[T]) []T {
	var out []T
	for {
		v, ok := src.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// MapSource transforms the values of an inner source lazily.
type MapSource[In, Out any] struct {
	inner Source[In]
	fn    func(In) Out
}

// Map returns a source yielding fn(v) for every v of inner.
func Map[In, Out any](inner Source[In], fn func(In) Out) *MapSource[In, Out] {
	return &MapSource[In, Out]{inner: inner, fn: fn}
}

func (m *MapSource[In, Out]) Reset() { m.inner.Reset() }

func (m *MapSource[In, Out]) Next() (Out, bool) {
	v, ok := m.inner.Next()
	if !ok {
		var zero Out
		return zero, false
	}
	return m.fn(v), true
}

func (m *MapSource[In, Out]) Values() []Out {
	return Drain[Out](m)
}

// Remaining returns -1 when the inner source is not Sized.
func (m *MapSource[In, Out]) Remaining() int {
	if n, ok := Remaining(m.inner); ok {
		return n
	}
	return -1
}
