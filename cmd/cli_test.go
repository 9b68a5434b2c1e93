// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"algcore/internal/frame"
	"algcore/internal/source"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const smallStaging = `
staging:
  eeg_window: 16
  ir_window: 4
  eeg_interval: 8
  ir_interval: 2
`

// recording writes rows of an alternating +-200 EEG signal next to a
// constant IR signal.
func recording(t *testing.T, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("eeg,ir\n")
	for i := range rows {
		fmt.Fprintf(&b, "%d,100\n", (i%2)*400-200)
	}
	return writeFile(t, "night.csv", b.String())
}

func TestDecode_EEG(t *testing.T) {
	out, err := run(t, "decode", "--stream", "eeg",
		"000003e8", "0001 0002 0003 0004", "0005:0006:0007:0008")
	require.NoError(t, err)

	assert.Contains(t, out, "stream:      eeg")
	assert.Contains(t, out, "byte order:  BE")
	assert.Contains(t, out, "timestamp:   1000")
	assert.Contains(t, out, "samples:     [1 2 3 4 5 6 7 8]")
	assert.NotContains(t, out, "tail:")
}

func TestDecode_AuxLittleEndian(t *testing.T) {
	f := frame.PAT{
		Timestamp:   1000,
		IRLed:       100,
		Accel:       frame.Axes{X: 1, Y: 2, Z: -3},
		Temperature: [2]int8{25, -2},
	}
	raw := fmt.Sprintf("%x", f.Encode(frame.LittleEndian))

	out, err := run(t, "decode", "-s", "aux", "--byte-order", "little", raw)
	require.NoError(t, err)

	assert.Contains(t, out, "stream:      aux")
	assert.Contains(t, out, "byte order:  LE")
	assert.Contains(t, out, "ir led:      100")
	assert.Contains(t, out, "accel:       x=1 y=2 z=-3")
	assert.Contains(t, out, "temperature: 25 -2")
}

func TestDecode_Errors(t *testing.T) {
	_, err := run(t, "decode", "--stream", "eeg", "0001")
	assert.ErrorIs(t, err, frame.ErrShortFrame)

	_, err = run(t, "decode", "--stream", "stream2", "00")
	assert.ErrorIs(t, err, frame.ErrUnknownStream)

	_, err = run(t, "decode", "zz")
	assert.ErrorContains(t, err, "invalid hex frame")

	_, err = run(t, "decode", "--byte-order", "middle", "00")
	assert.Error(t, err)
}

func TestReplay_CSV(t *testing.T) {
	cfg := writeFile(t, "algcore.yaml", smallStaging)
	night := recording(t, 64)

	out, err := run(t, "replay", "--config", cfg, "--eeg", night, "--ir", night, "--metrics")
	require.NoError(t, err)

	// 8 EEG frames end at 512ms, 64 PAT frames at 2560ms.
	assert.Contains(t, out, "Replayed 2.56s of signal")
	assert.Contains(t, out, "Epochs: 7")
	assert.Contains(t, out, "deep:    7")
	assert.NotContains(t, out, "Presentation batches")
	assert.Contains(t, out, `frames_consumed_total{stream="eeg"} 8`)
	assert.Contains(t, out, `frames_consumed_total{stream="aux"} 64`)
}

func TestReplay_DurationAndPresentation(t *testing.T) {
	cfg := writeFile(t, "algcore.yaml", smallStaging+"frame:\n  byte_order: little\n")
	night := recording(t, 64)

	out, err := run(t, "replay", "-c", cfg, "--eeg", night, "--ir", night,
		"--duration", "200ms", "--presentation")
	require.NoError(t, err)

	// EEG at 64, 128, 192ms and PAT every 40ms up to 200ms. Five IR
	// samples cover a single epoch.
	assert.Contains(t, out, "Replayed 200ms of signal")
	assert.Contains(t, out, "Epochs: 1")
	assert.Contains(t, out, "Presentation batches: 8 (5 pulse samples)")
}

func TestReplay_HeaderlessIndex(t *testing.T) {
	var b strings.Builder
	for range 32 {
		b.WriteString("7,100\n")
	}
	night := writeFile(t, "raw.csv", b.String())

	out, err := run(t, "replay", "--eeg", night, "--eeg-column", "0", "--ir", night, "--ir-column", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Epochs: 0", "default windows need minutes of signal")
}

func TestReplay_Errors(t *testing.T) {
	_, err := run(t, "replay")
	assert.Error(t, err, "eeg is required")

	night := recording(t, 8)
	_, err = run(t, "replay", "--eeg", night, "--eeg-column", "missing")
	assert.ErrorIs(t, err, source.ErrColumnNotFound)

	_, err = run(t, "replay", "--eeg", night, "--real-time-factor=-1")
	assert.Error(t, err)
}

func TestRoot_Version(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "algcore")
}

func TestConvert_ThenReplayWAV(t *testing.T) {
	cfg := writeFile(t, "algcore.yaml", smallStaging)
	night := recording(t, 64)
	wav := filepath.Join(t.TempDir(), "night.wav")

	out, err := run(t, "convert", "-i", night, "-o", wav, "--columns", "eeg,ir")
	require.NoError(t, err)
	assert.Contains(t, out, "2 channels, 64 samples each")

	out, err = run(t, "replay", "-c", cfg, "--eeg", wav, "--ir", wav, "--ir-channel", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Epochs: 7")
	assert.Contains(t, out, "deep:    7")

	_, err = run(t, "replay", "-c", cfg, "--eeg", wav, "--eeg-channel", "2")
	assert.ErrorContains(t, err, "out of range")
}

func TestConvert_Errors(t *testing.T) {
	night := recording(t, 4)
	wav := filepath.Join(t.TempDir(), "night.wav")

	_, err := run(t, "convert", "-i", night)
	assert.Error(t, err, "out is required")

	_, err = run(t, "convert", "-i", night, "-o", wav, "--columns", "eeg,missing")
	assert.ErrorIs(t, err, source.ErrColumnNotFound)
}
