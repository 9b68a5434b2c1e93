// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"sync"
)

// Recorder is a sink that stores every value for later inspection instead of
// acting on it.
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

func (r *Recorder[T]) Consume(v T) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

// Values returns a copy of everything recorded so far.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Last returns the most recent value, or false if nothing was recorded.
func (r *Recorder[T]) Last() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		var zero T
		return zero, false
	}
	return r.values[len(r.values)-1], true
}

// GenerateComplexWave mixes delta, alpha and beta components the way a
// sleeping EEG might look: 1 Hz at half amplitude, 10 Hz at 0.3 and 20 Hz at
// 0.2 of amplitude.
func GenerateComplexWave(size int, sampleRate, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*1*tm)*0.5 +
			math.Sin(2*math.Pi*10*tm)*0.3 +
			math.Sin(2*math.Pi*20*tm)*0.2
		buffer[i] = signal * amplitude
	}
	return buffer
}

func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*frequency*t) * amplitude
	}
	return buffer
}

// Offset adds c to every value in place and returns the slice.
func Offset(values []float64, c float64) []float64 {
	for i := range values {
		values[i] += c
	}
	return values
}
