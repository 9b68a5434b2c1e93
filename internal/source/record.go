// SPDX-License-Identifier: MIT
package source

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrChannelLength = errors.New("channels differ in length")

// WriteWAV records equal-length signals as the channels of a PCM WAV file,
// so that WAVChannel can load them back. Samples are truncated to integers
// and must fit bitDepth.
func WriteWAV[T Number](path string, sampleRate, bitDepth int, channels ...[]T) (err error) {
	if len(channels) == 0 {
		return fmt.Errorf("%s: no channels to record", path)
	}
	n := len(channels[0])
	for i, ch := range channels {
		if len(ch) != n {
			return fmt.Errorf("%s: %w: channel %d has %d samples, want %d",
				path, ErrChannelLength, i, len(ch), n)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	enc := wav.NewEncoder(file, sampleRate, bitDepth, len(channels), 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: len(channels),
			SampleRate:  sampleRate,
		},
		Data:           make([]int, 0, n*len(channels)),
		SourceBitDepth: bitDepth,
	}
	for i := range n {
		for _, ch := range channels {
			buf.Data = append(buf.Data, int(ch[i]))
		}
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode wav %s: %w", path, err)
	}
	return enc.Close()
}
