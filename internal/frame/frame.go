// SPDX-License-Identifier: MIT
/*
Package frame implements the fixed-width binary frames emitted by the mask.

Layout of one frame of declared length L (offsets in bytes):

	+-----------+--------+-------+----------------------------------------+
	| Field     | Offset | Width | Type                                   |
	|-----------|--------|-------|----------------------------------------|
	| timestamp | 0      | 4     | uint32, byte-order dependent           |
	| EEG [i]   | 4+2i   | 2     | int16, byte-order dependent            |
	| PAT IR    | 4      | 4     | int32, byte-order dependent            |
	| PAT accel | 12..17 | 2 x 3 | int16 x, y, z, byte-order dependent    |
	| PAT temp  | 18, 19 | 1 x 2 | int8, byte-order independent           |
	+-----------+--------+-------+----------------------------------------+

PAT bytes 8..11 and everything past byte 19 are reserved. They are kept
verbatim so that decoding and re-encoding a frame reproduces all L bytes.
*/
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ByteOrder selects how multi-byte fields are interpreted.
type ByteOrder uint8

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

// DefaultByteOrder is used whenever a caller does not pick one explicitly.
const DefaultByteOrder = BigEndian

func (o ByteOrder) String() string {
	switch o {
	case BigEndian:
		return "BE"
	case LittleEndian:
		return "LE"
	default:
		return "unknown"
	}
}

// ParseByteOrder accepts "be", "big", "big-endian", "le", "little" and
// "little-endian" in any case.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(s) {
	case "be", "big", "big-endian", "bigendian":
		return BigEndian, nil
	case "le", "little", "little-endian", "littleendian":
		return LittleEndian, nil
	default:
		return DefaultByteOrder, fmt.Errorf("unknown byte order %q", s)
	}
}

func (o ByteOrder) binary() binary.ByteOrder {
	if o == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Frame geometry.
const (
	TimestampSize = 4
	EEGLength     = 8                           // samples per EEG frame
	EEGSize       = TimestampSize + 2*EEGLength // 20 bytes
	PATSize       = 20                          // bytes covered by named PAT fields
	patIROffset   = 4
	patAccelStart = 12
	patTempStart  = 18
	patGapStart   = patIROffset + 4 // reserved span 8..11
)

// Default emission cadence of the mask for each stream.
const (
	EEGInterval = 64 * time.Millisecond // 8 samples at 125 Hz
	PATInterval = 40 * time.Millisecond // 1 reading at 25 Hz
)

var (
	// ErrShortFrame is returned when a buffer is shorter than the fixed width
	// of the requested frame kind. Short frames are rejected, never padded.
	ErrShortFrame = errors.New("frame shorter than declared width")
	// ErrUnknownStream is returned for raw frames with an unrecognised stream tag.
	ErrUnknownStream = errors.New("unknown source stream")
)

// Stream tags the physical feed a raw frame arrived on.
type Stream uint8

const (
	StreamEEG Stream = iota // stream0 of the mask
	StreamAux               // stream1: pulse, accelerometer, temperature
)

func (s Stream) String() string {
	switch s {
	case StreamEEG:
		return "eeg"
	case StreamAux:
		return "aux"
	default:
		return "unknown"
	}
}

// RawFrame is an undecoded frame as received from the device.
type RawFrame struct {
	Stream Stream
	Bytes  []byte
	Order  ByteOrder
}

// Typed is implemented by every decoded frame: EEG and PAT.
type Typed interface {
	Stream() Stream
	Encode(order ByteOrder) []byte
}

// Decode interprets raw according to its stream tag.
func Decode(raw RawFrame) (Typed, error) {
	switch raw.Stream {
	case StreamEEG:
		f, err := DecodeEEG(raw.Bytes, raw.Order)
		if err != nil {
			return nil, err
		}
		return f, nil
	case StreamAux:
		f, err := DecodePAT(raw.Bytes, raw.Order)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStream, raw.Stream)
	}
}

func shortFrame(kind string, got, want int) error {
	return fmt.Errorf("%w: %s frame has %d bytes, need %d", ErrShortFrame, kind, got, want)
}
