// SPDX-License-Identifier: MIT
package frame

// EEG is one decoded frame of the EEG stream.
type EEG struct {
	Timestamp uint32
	Samples   [EEGLength]int16

	// Tail holds bytes past the last sample when the declared frame is longer
	// than EEGSize, so that Encode returns the original buffer.
	Tail []byte
}

// DecodeEEG decodes an EEG frame from the first len(b) bytes of b.
// Frames shorter than EEGSize are rejected with ErrShortFrame.
func DecodeEEG(b []byte, order ByteOrder) (EEG, error) {
	if len(b) < EEGSize {
		return EEG{}, shortFrame("eeg", len(b), EEGSize)
	}

	bo := order.binary()
	f := EEG{Timestamp: bo.Uint32(b[0:TimestampSize])}
	for i := range EEGLength {
		off := TimestampSize + 2*i
		f.Samples[i] = int16(bo.Uint16(b[off : off+2]))
	}
	if len(b) > EEGSize {
		f.Tail = append([]byte(nil), b[EEGSize:]...)
	}
	return f, nil
}

// Encode is the inverse of DecodeEEG.
func (f EEG) Encode(order ByteOrder) []byte {
	b := make([]byte, EEGSize+len(f.Tail))
	bo := order.binary()
	bo.PutUint32(b[0:TimestampSize], f.Timestamp)
	for i, s := range f.Samples {
		off := TimestampSize + 2*i
		bo.PutUint16(b[off:off+2], uint16(s))
	}
	copy(b[EEGSize:], f.Tail)
	return b
}

func (EEG) Stream() Stream { return StreamEEG }

// WithTimestamp returns a copy of f stamped with ts.
func (f EEG) WithTimestamp(ts uint32) EEG {
	f.Timestamp = ts
	return f
}
