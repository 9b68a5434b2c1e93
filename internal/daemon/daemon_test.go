// SPDX-License-Identifier: MIT
package daemon

import (
	"context"
	"runtime"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"algcore/internal/frame"
	applog "algcore/internal/log"
	"algcore/internal/metric"
	"algcore/internal/pipe"
	"algcore/internal/port"
	"algcore/internal/signal"
	"algcore/internal/sim"
	"algcore/internal/source"
)

type counter struct {
	name    string
	resets  int
	steps   int
	ends    int
	eeg     []int32
	ir      []int32
	endSeen int
}

func (c *counter) Name() string { return c.name }

func (c *counter) ResetState() {
	c.resets++
	c.eeg, c.ir = nil, nil
}

func (c *counter) ProcessInput(v signal.View) {
	c.steps++
	c.eeg = append(c.eeg, v.New(signal.EEG)...)
	c.ir = append(c.ir, v.New(signal.IRLed)...)
}

func (c *counter) EndStreaming(v signal.View) {
	c.ends++
	c.endSeen = v.Len(signal.EEG)
}

type panicky struct{}

func (panicky) ResetState() {}

func (panicky) ProcessInput(signal.View) { panic("boom") }

func (panicky) EndStreaming(signal.View) { panic("boom at end") }

func eegFrame(first int16) frame.EEG {
	var f frame.EEG
	for i := range f.Samples {
		f.Samples[i] = first + int16(i)
	}
	return f
}

func TestDaemon_Session(t *testing.T) {
	d := New()
	alg := &counter{name: "counter"}
	d.AddStreamingAlgorithm(alg)

	require.NoError(t, d.StartProcessing())
	assert.True(t, d.Processing())
	assert.Equal(t, 1, alg.resets)
	assert.NotEqual(t, uuid.Nil, d.Session())

	require.NoError(t, d.ConsumeEEG(eegFrame(0)))
	require.NoError(t, d.ConsumePAT(frame.PAT{IRLed: 42}))
	require.NoError(t, d.ConsumeEEG(eegFrame(8)))

	assert.Equal(t, 3, alg.steps)
	assert.Len(t, alg.eeg, 16)
	assert.Equal(t, []int32{42}, alg.ir)
	assert.Equal(t, 16, d.Len(signal.EEG))

	require.NoError(t, d.EndProcessing())
	assert.Equal(t, 1, alg.ends)
	assert.Equal(t, 16, alg.endSeen)
	assert.False(t, d.Processing())

	assert.ErrorIs(t, d.EndProcessing(), ErrNotProcessing)
	assert.Equal(t, 1, alg.ends, "EndStreaming runs once per session")
}

func TestDaemon_LifecycleViolations(t *testing.T) {
	m := metric.New()
	d := New(WithMetrics(m))
	alg := &counter{}
	d.AddStreamingAlgorithm(alg)

	assert.ErrorIs(t, d.ConsumeEEG(eegFrame(0)), ErrNotProcessing)
	assert.ErrorIs(t, d.ConsumePAT(frame.PAT{}), ErrNotProcessing)
	assert.ErrorIs(t, d.Consume(frame.RawFrame{Bytes: make([]byte, frame.EEGSize)}), ErrNotProcessing)
	assert.ErrorIs(t, d.EndProcessing(), ErrNotProcessing)

	require.NoError(t, d.StartProcessing())
	assert.ErrorIs(t, d.StartProcessing(), ErrAlreadyProcessing)
	require.NoError(t, d.EndProcessing())

	assert.ErrorIs(t, d.ConsumeEEG(eegFrame(0)), ErrNotProcessing)
	assert.Zero(t, alg.steps)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FramesRejected.WithLabelValues("eeg", "inactive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesRejected.WithLabelValues("aux", "inactive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions))
}

func TestDaemon_ConsumeRaw(t *testing.T) {
	for _, order := range []frame.ByteOrder{frame.BigEndian, frame.LittleEndian} {
		t.Run(order.String(), func(t *testing.T) {
			d := New(WithByteOrder(order))
			alg := &counter{}
			d.AddStreamingAlgorithm(alg)
			require.NoError(t, d.StartProcessing())

			eeg := eegFrame(-4)
			require.NoError(t, d.Consume(frame.RawFrame{Stream: frame.StreamEEG, Bytes: eeg.Encode(order), Order: order}))

			pat := frame.PAT{IRLed: -123456, Accel: frame.Axes{X: 1, Y: -2, Z: 3}, Temperature: [2]int8{36, -1}}
			require.NoError(t, d.ConsumeBytes(frame.StreamAux, pat.Encode(order)))

			assert.Equal(t, []int32{-4, -3, -2, -1, 0, 1, 2, 3}, alg.eeg)
			assert.Equal(t, []int32{-123456}, alg.ir)
			assert.Equal(t, order, d.ByteOrder())
		})
	}
}

func TestDaemon_MalformedFrameIsIsolated(t *testing.T) {
	m := metric.New()
	d := New(WithMetrics(m))
	alg := &counter{}
	d.AddStreamingAlgorithm(alg)
	require.NoError(t, d.StartProcessing())

	err := d.ConsumeBytes(frame.StreamEEG, make([]byte, 7))
	require.ErrorIs(t, err, frame.ErrShortFrame)

	err = d.ConsumeBytes(frame.Stream(9), make([]byte, 20))
	require.ErrorIs(t, err, frame.ErrUnknownStream)

	require.NoError(t, d.ConsumeBytes(frame.StreamEEG, make([]byte, frame.EEGSize)))
	assert.Equal(t, 1, alg.steps)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesRejected.WithLabelValues("eeg", "malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesConsumed.WithLabelValues("eeg")))
}

func TestDaemon_AddMidSession(t *testing.T) {
	d := New()
	early := &counter{}
	d.AddStreamingAlgorithm(early)
	require.NoError(t, d.StartProcessing())
	require.NoError(t, d.ConsumeEEG(eegFrame(0)))

	late := &counter{}
	d.AddStreamingAlgorithm(late)
	assert.Equal(t, 1, late.resets)

	require.NoError(t, d.ConsumeEEG(eegFrame(8)))
	assert.Len(t, early.eeg, 16)
	assert.Equal(t, []int32{8, 9, 10, 11, 12, 13, 14, 15}, late.eeg)

	require.NoError(t, d.EndProcessing())
	assert.Equal(t, 1, early.ends)
	assert.Equal(t, 1, late.ends)
}

func TestDaemon_NewSessionStartsEmpty(t *testing.T) {
	d := New()
	alg := &counter{}
	d.AddStreamingAlgorithm(alg)

	require.NoError(t, d.StartProcessing())
	first := d.Session()
	require.NoError(t, d.ConsumeEEG(eegFrame(0)))
	require.NoError(t, d.EndProcessing())

	require.NoError(t, d.StartProcessing())
	assert.NotEqual(t, first, d.Session())
	assert.Zero(t, d.Len(signal.EEG))
	assert.Equal(t, 2, alg.resets)

	require.NoError(t, d.ConsumeEEG(eegFrame(100)))
	assert.Equal(t, []int32{100, 101, 102, 103, 104, 105, 106, 107}, alg.eeg)
}

func TestDaemon_PanickingAlgorithm(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	defer applog.Use(zap.New(core))()

	m := metric.New()
	d := New(WithMetrics(m))
	d.AddStreamingAlgorithm(panicky{})
	healthy := &counter{name: "healthy"}
	d.AddStreamingAlgorithm(healthy)

	require.NoError(t, d.StartProcessing())
	require.NoError(t, d.ConsumeEEG(eegFrame(0)))
	require.NoError(t, d.ConsumeEEG(eegFrame(8)))
	require.NoError(t, d.EndProcessing())

	assert.Equal(t, 2, healthy.steps)
	assert.Equal(t, 1, healthy.ends)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AlgorithmPanics.WithLabelValues("daemon.panicky")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AlgorithmSteps.WithLabelValues("healthy")))
	assert.Equal(t, 3, logs.FilterMessageSnippet("panicked").Len())
}

func TestDaemon_SinksDrivenBySimulator(t *testing.T) {
	d := New()
	alg := &counter{}
	d.AddStreamingAlgorithm(alg)
	require.NoError(t, d.StartProcessing())

	values := port.FromIndex(func(i int) int { return i }, 250)
	eegEP := port.NewEndpoint(d.EEGSink())
	patEP := port.NewEndpoint(d.PATSink())

	eegPipe := pipe.New[frame.EEG](source.NewEEGFrames[int](values), eegEP.Weak(), pipe.StampFrames[frame.EEG]())
	patPipe := pipe.New[frame.PAT](source.NewPATFrames[int](port.Zeros[int](50)), patEP.Weak(), pipe.StampFrames[frame.PAT]())

	s := sim.New()
	require.NoError(t, s.AddStreamingPipe(eegPipe, frame.EEGInterval))
	require.NoError(t, s.AddStreamingPipe(patPipe, frame.PATInterval))
	require.NoError(t, s.Drain(context.Background()))

	assert.Len(t, alg.eeg, 248)
	assert.Len(t, alg.ir, 50)
	for i, v := range alg.eeg {
		require.Equal(t, int32(i), v)
	}
	assert.Equal(t, 31+50, alg.steps)

	require.NoError(t, d.EndProcessing())

	// A closed session drops frames without breaking the pipe.
	raw := port.NewEndpoint(d.RawSink())
	rawPipe := pipe.New[frame.RawFrame](port.FromSlice([]frame.RawFrame{{Bytes: make([]byte, frame.EEGSize)}}), raw.Weak())
	rawPipe.Step()
	assert.True(t, rawPipe.IsDepleted())
	assert.Equal(t, 31+50, alg.steps)

	runtime.KeepAlive(eegEP)
	runtime.KeepAlive(patEP)
	runtime.KeepAlive(raw)
}
