// SPDX-License-Identifier: MIT
package source

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"algcore/internal/port"
)

var ErrInvalidWAV = errors.New("not a valid wav file")

// WAVChannel loads one channel of a PCM WAV recording as integer samples.
func WAVChannel[T Number](path string, channel int) (*port.SliceSource[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav %s: %w", path, err)
	}

	channels := buf.Format.NumChannels
	if channel < 0 || channel >= channels {
		return nil, fmt.Errorf("%s: channel %d out of range (file has %d)", path, channel, channels)
	}

	values := make([]T, 0, len(buf.Data)/channels)
	for i := channel; i < len(buf.Data); i += channels {
		values = append(values, T(buf.Data[i]))
	}
	return port.FromSlice(values), nil
}
