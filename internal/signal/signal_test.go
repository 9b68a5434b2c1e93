// SPDX-License-Identifier: MIT
package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"algcore/internal/frame"
	"algcore/pkg/bitint"
)

type recorder struct {
	resets   int
	inputs   [][]int32
	ir       [][]int32
	starts   []int
	finals   [][]int32
	totalEEG []int
}

func (r *recorder) ResetState() { r.resets++ }

func (r *recorder) ProcessInput(v View) {
	r.inputs = append(r.inputs, v.New(EEG))
	r.ir = append(r.ir, v.New(IRLed))
	r.starts = append(r.starts, v.Start(EEG))
	r.totalEEG = append(r.totalEEG, v.Len(EEG))
}

func (r *recorder) EndStreaming(v View) {
	r.finals = append(r.finals, v.New(EEG))
}

func eegFrame(ts uint32, first int16) frame.EEG {
	f := frame.EEG{Timestamp: ts}
	for i := range f.Samples {
		f.Samples[i] = first + int16(i)
	}
	return f
}

func TestChannel_Spec(t *testing.T) {
	assert.Equal(t, 125.0, EEG.Spec().Rate)
	assert.Equal(t, 8.0, EEG.Spec().MsPerSample())
	assert.Equal(t, 40.0, IRLed.Spec().MsPerSample())
	assert.Equal(t, 40*time.Millisecond, Temperature2.Spec().Period())
	assert.Equal(t, frame.StreamAux, AccelZ.Spec().Stream)
	assert.Equal(t, "accel_y", AccelY.String())
	assert.Equal(t, "unknown", Channel(42).String())

	// One frame of each stream covers the same span of time.
	eegSpan := float64(frame.EEGLength) * EEG.Spec().MsPerSample()
	assert.Equal(t, float64(frame.EEGInterval.Milliseconds()), eegSpan)
	assert.Equal(t, float64(frame.PATInterval.Milliseconds()), IRLed.Spec().MsPerSample())
}

func TestAggregator_AppendEEG(t *testing.T) {
	a := NewAggregator()
	require.NoError(t, a.Append(eegFrame(64, 0)))
	require.NoError(t, a.Append(eegFrame(128, 8)))

	assert.Equal(t, 16, a.Len(EEG))
	assert.Zero(t, a.Len(IRLed))

	ts, ok := a.LastTimestamp(frame.StreamEEG)
	assert.True(t, ok)
	assert.Equal(t, uint32(128), ts)

	_, ok = a.LastTimestamp(frame.StreamAux)
	assert.False(t, ok)
}

func TestAggregator_AppendPAT(t *testing.T) {
	a := NewAggregator()
	require.NoError(t, a.Append(frame.PAT{
		Timestamp:   40,
		IRLed:       -1985238135,
		Accel:       frame.Axes{X: 291, Y: 17767, Z: -30293},
		Temperature: [2]int8{-85, -119},
	}))

	alg := &recorder{}
	a.Attach(alg)
	a.Attach(&recorder{})

	for _, ch := range PATChannels {
		assert.Equal(t, 1, a.Len(ch), ch.String())
	}
	assert.Zero(t, a.Len(EEG))

	a.consumers[0].cursor = [numChannels]int{}
	v := a.advance(a.consumers[0])
	assert.Equal(t, int32(-1985238135), v.At(IRLed, 0))
	assert.Equal(t, int32(291), v.At(AccelX, 0))
	assert.Equal(t, int32(17767), v.At(AccelY, 0))
	assert.Equal(t, int32(-30293), v.At(AccelZ, 0))
	assert.Equal(t, int32(-85), v.At(Temperature1, 0))
	assert.Equal(t, int32(-119), v.At(Temperature2, 0))
}

type bogus struct{}

func (bogus) Stream() frame.Stream { return frame.StreamEEG }

func (bogus) Encode(frame.ByteOrder) []byte { return nil }

func TestAggregator_UnsupportedFrame(t *testing.T) {
	a := NewAggregator()
	assert.ErrorIs(t, a.Append(bogus{}), ErrUnsupportedFrame)
}

func TestAggregator_EachSampleSeenOnce(t *testing.T) {
	a := NewAggregator()
	alg := &recorder{}
	a.Attach(alg)

	require.NoError(t, a.Append(eegFrame(64, 0)))
	a.AdvanceAlgorithms()
	require.NoError(t, a.Append(eegFrame(128, 8)))
	require.NoError(t, a.Append(frame.PAT{IRLed: 7}))
	a.AdvanceAlgorithms()
	a.AdvanceAlgorithms()

	require.Len(t, alg.inputs, 3)
	assert.Equal(t, []int32{0, 1, 2, 3, 4, 5, 6, 7}, alg.inputs[0])
	assert.Equal(t, []int32{8, 9, 10, 11, 12, 13, 14, 15}, alg.inputs[1])
	assert.Empty(t, alg.inputs[2])
	assert.Equal(t, []int{0, 8, 16}, alg.starts)
	assert.Equal(t, []int{8, 16, 16}, alg.totalEEG)
	assert.Equal(t, [][]int32{{}, {7}, {}}, alg.ir)
}

func TestAggregator_AttachLateHasNoBackfill(t *testing.T) {
	a := NewAggregator()
	early := &recorder{}
	a.Attach(early)

	require.NoError(t, a.Append(eegFrame(64, 0)))
	late := &recorder{}
	a.Attach(late)
	require.NoError(t, a.Append(eegFrame(128, 8)))
	a.AdvanceAlgorithms()

	assert.Len(t, early.inputs[0], 16)
	assert.Equal(t, []int32{8, 9, 10, 11, 12, 13, 14, 15}, late.inputs[0])
	assert.Equal(t, []int{8}, late.starts)
}

func TestAggregator_Finish(t *testing.T) {
	a := NewAggregator()
	alg := &recorder{}
	a.Attach(alg)

	require.NoError(t, a.Append(eegFrame(64, 0)))
	a.AdvanceAlgorithms()
	require.NoError(t, a.Append(eegFrame(128, 8)))
	a.Finish()

	require.Len(t, alg.finals, 1)
	assert.Equal(t, []int32{8, 9, 10, 11, 12, 13, 14, 15}, alg.finals[0])
}

func TestAggregator_CapacityRoundsUp(t *testing.T) {
	a := NewAggregator(WithCapacity(7 * time.Second))
	for _, ch := range Channels {
		c := cap(a.data[ch])
		assert.True(t, bitint.IsPowerOfTwo(c), "%s capacity %d", ch, c)
		assert.GreaterOrEqual(t, float64(c), 7*ch.Spec().Rate, "%s", ch)
	}
	assert.Equal(t, 1024, cap(a.data[EEG]))
	assert.Equal(t, 256, cap(a.data[IRLed]))

	assert.Zero(t, cap(NewAggregator().data[EEG]), "no capacity means no preallocation")
}

func TestAggregator_Reset(t *testing.T) {
	a := NewAggregator(WithCapacity(time.Minute))
	assert.Equal(t, 8192, cap(a.data[EEG]))
	assert.Equal(t, 2048, cap(a.data[IRLed]))

	alg := &recorder{}
	a.Attach(alg)
	require.NoError(t, a.Append(eegFrame(64, 0)))
	a.AdvanceAlgorithms()

	a.Reset()
	assert.Zero(t, a.Len(EEG))
	_, ok := a.LastTimestamp(frame.StreamEEG)
	assert.False(t, ok)

	require.NoError(t, a.Append(eegFrame(0, 100)))
	a.AdvanceAlgorithms()
	assert.Equal(t, 0, alg.starts[1])
	assert.Equal(t, int32(100), alg.inputs[1][0])
	assert.Equal(t, []Algorithm{alg}, a.Algorithms())
}

func TestView_RangeAndFloats(t *testing.T) {
	a := NewAggregator()
	require.NoError(t, a.Append(eegFrame(64, -4)))
	a.Attach(&recorder{})
	v := a.advance(a.consumers[0])

	assert.Equal(t, 8, v.Len(EEG))
	assert.Equal(t, 8, v.Start(EEG))
	assert.Empty(t, v.New(EEG))
	assert.Equal(t, []int32{-3, -2}, v.Range(EEG, 1, 3))
	assert.Equal(t, []float64{2, 3}, v.Floats(EEG, 6, 100))
	assert.Equal(t, []int32{-4}, v.Range(EEG, -5, 1))
	assert.Empty(t, v.Range(EEG, 5, 2))
	assert.Empty(t, v.Range(Channel(99), 0, 10))

	ts, ok := v.LastTimestamp(frame.StreamEEG)
	assert.True(t, ok)
	assert.Equal(t, uint32(64), ts)
	_, ok = View{}.LastTimestamp(frame.StreamEEG)
	assert.False(t, ok)

	got := v.Range(EEG, 0, 1)
	got[0] = 1000
	assert.Equal(t, int32(-4), v.At(EEG, 0), "Range returns a copy")
}
