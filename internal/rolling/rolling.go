// SPDX-License-Identifier: MIT
/*
Package rolling computes statistics over a sliding window of samples.

Every strategy implements Window: Init once with the window length, then Step
with the current window contents and the phase of the enclosing scan. Apply
recomputes from scratch on every step; Min and Sum keep incremental state
and only look at the elements entering and leaving the window.
*/
package rolling

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase is the position of a window within a scan.
type Phase uint8

const (
	Start Phase = iota
	Step
	End
)

func (p Phase) String() string {
	switch p {
	case Start:
		return "start"
	case Step:
		return "step"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Window is a rolling statistic. Step must be called with Start first; the
// values slice is only valid for the duration of the call.
type Window interface {
	Init(length int)
	Step(values []float64, phase Phase) float64
}

// Reduction maps a full window to one value.
type Reduction func(values []float64) float64

// Reductions backed by gonum.
var (
	Mean   Reduction = func(v []float64) float64 { return stat.Mean(v, nil) }
	StdDev Reduction = func(v []float64) float64 { return stat.StdDev(v, nil) }
	Sum    Reduction = floats.Sum
)

// Apply evaluates a Reduction over the whole window on every step.
type Apply struct {
	fn Reduction
}

func NewApply(fn Reduction) *Apply {
	return &Apply{fn: fn}
}

func (a *Apply) Init(int) {}

func (a *Apply) Step(values []float64, _ Phase) float64 {
	return a.fn(values)
}

// Roll scans values with trailing windows of up to length samples and
// returns one output per input. The window at index i covers
// values[max(0, i-length+1) : i+1].
func Roll(values []float64, length int, w Window) []float64 {
	if length < 1 {
		length = 1
	}
	w.Init(length)

	out := make([]float64, len(values))
	last := len(values) - 1
	for i := range values {
		phase := Step
		switch i {
		case 0:
			phase = Start
		case last:
			phase = End
		}
		out[i] = w.Step(values[max(0, i-length+1):i+1], phase)
	}
	return out
}

// Scanner feeds a Window one sample at a time, keeping the trailing window
// itself. It is the streaming counterpart of Roll.
type Scanner struct {
	length int
	w      Window
	buf    []float64
	n      int
}

func NewScanner(length int, w Window) *Scanner {
	if length < 1 {
		length = 1
	}
	w.Init(length)
	return &Scanner{length: length, w: w, buf: make([]float64, 0, 2*length)}
}

// Push appends v and returns the statistic over the window ending at v.
func (s *Scanner) Push(v float64) float64 {
	if len(s.buf) == cap(s.buf) {
		s.buf = append(s.buf[:0], s.buf[len(s.buf)-s.length+1:]...)
	}
	s.buf = append(s.buf, v)

	phase := Step
	if s.n == 0 {
		phase = Start
	}
	s.n++

	return s.w.Step(s.buf[max(0, len(s.buf)-s.length):], phase)
}

// Count returns the number of samples pushed so far.
func (s *Scanner) Count() int { return s.n }
