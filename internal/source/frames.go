// SPDX-License-Identifier: MIT
package source

import (
	"algcore/internal/frame"
	"algcore/internal/port"
)

// EEGFrames cuts a scalar signal into EEG frames of frame.EEGLength samples.
// A trailing partial frame is dropped. Frame i carries the nominal emission
// time i*frame.EEGInterval in milliseconds as its timestamp.
type EEGFrames[T Number] struct {
	inner port.Source[T]
	n     uint32
}

func NewEEGFrames[T Number](inner port.Source[T]) *EEGFrames[T] {
	return &EEGFrames[T]{inner: inner}
}

func (s *EEGFrames[T]) Reset() {
	s.inner.Reset()
	s.n = 0
}

func (s *EEGFrames[T]) Next() (frame.EEG, bool) {
	var f frame.EEG
	for i := range frame.EEGLength {
		v, ok := s.inner.Next()
		if !ok {
			return frame.EEG{}, false
		}
		f.Samples[i] = int16(v)
	}
	f.Timestamp = s.n * uint32(frame.EEGInterval.Milliseconds())
	s.n++
	return f, true
}

func (s *EEGFrames[T]) Values() []frame.EEG {
	return port.Drain[frame.EEG](s)
}

// Remaining counts the full frames left, or -1 if the inner source is not
// port.Sized.
func (s *EEGFrames[T]) Remaining() int {
	if n, ok := port.Remaining(s.inner); ok {
		return n / frame.EEGLength
	}
	return -1
}

// PATFrames turns every value of a scalar signal into one PAT frame carrying
// it as the infrared reading.
type PATFrames[T Number] struct {
	inner port.Source[T]
	n     uint32
}

func NewPATFrames[T Number](inner port.Source[T]) *PATFrames[T] {
	return &PATFrames[T]{inner: inner}
}

func (s *PATFrames[T]) Reset() {
	s.inner.Reset()
	s.n = 0
}

func (s *PATFrames[T]) Next() (frame.PAT, bool) {
	v, ok := s.inner.Next()
	if !ok {
		return frame.PAT{}, false
	}
	f := frame.PAT{
		Timestamp: s.n * uint32(frame.PATInterval.Milliseconds()),
		IRLed:     int32(v),
	}
	s.n++
	return f, true
}

func (s *PATFrames[T]) Values() []frame.PAT {
	return port.Drain[frame.PAT](s)
}

func (s *PATFrames[T]) Remaining() int {
	if n, ok := port.Remaining(s.inner); ok {
		return n
	}
	return -1
}
