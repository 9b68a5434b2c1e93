// SPDX-License-Identifier: MIT
package signal

import "algcore/internal/frame"

// View is a read-only window onto the aggregated signal. For every channel it
// spans everything stored so far and marks where the unseen part starts.
// Slices returned by a View are copies.
type View struct {
	agg  *Aggregator
	from [numChannels]int
	to   [numChannels]int
}

// Len returns the total number of samples visible on ch.
func (v View) Len(ch Channel) int {
	if !ch.valid() {
		return 0
	}
	return v.to[ch]
}

// Start returns the index of the first sample on ch not seen before this view.
func (v View) Start(ch Channel) int {
	if !ch.valid() {
		return 0
	}
	return v.from[ch]
}

// New returns the samples on ch not seen before this view.
func (v View) New(ch Channel) []int32 {
	return v.Range(ch, v.Start(ch), v.Len(ch))
}

// At returns sample i of ch. It panics if i is out of range.
func (v View) At(ch Channel, i int) int32 {
	return v.agg.data[ch][:v.to[ch]][i]
}

// Range returns a copy of samples [from, to) of ch, clamped to the view.
func (v View) Range(ch Channel, from, to int) []int32 {
	from, to = v.clamp(ch, from, to)
	out := make([]int32, to-from)
	if len(out) > 0 {
		copy(out, v.agg.data[ch][from:to])
	}
	return out
}

// Floats is Range converted to float64.
func (v View) Floats(ch Channel, from, to int) []float64 {
	from, to = v.clamp(ch, from, to)
	out := make([]float64, to-from)
	if len(out) == 0 {
		return out
	}
	for i, s := range v.agg.data[ch][from:to] {
		out[i] = float64(s)
	}
	return out
}

// LastTimestamp returns the timestamp of the latest frame of stream s.
func (v View) LastTimestamp(s frame.Stream) (uint32, bool) {
	if v.agg == nil {
		return 0, false
	}
	return v.agg.LastTimestamp(s)
}

func (v View) clamp(ch Channel, from, to int) (int, int) {
	n := v.Len(ch)
	to = min(max(to, 0), n)
	from = min(max(from, 0), to)
	return from, to
}
