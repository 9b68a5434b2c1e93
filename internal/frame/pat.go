// SPDX-License-Identifier: MIT
package frame

// Axes is one accelerometer reading.
type Axes struct {
	X, Y, Z int16
}

// PAT is one decoded frame of the auxiliary stream: infrared pulse reading,
// accelerometer axes and two temperature readings.
type PAT struct {
	Timestamp   uint32
	IRLed       int32
	Accel       Axes
	Temperature [2]int8

	// Reserved holds bytes 8..11 followed by every byte past PATSize.
	Reserved []byte
}

// DecodePAT decodes a PAT frame. Frames shorter than PATSize are rejected
// with ErrShortFrame.
func DecodePAT(b []byte, order ByteOrder) (PAT, error) {
	if len(b) < PATSize {
		return PAT{}, shortFrame("pat", len(b), PATSize)
	}

	bo := order.binary()
	f := PAT{
		Timestamp: bo.Uint32(b[0:TimestampSize]),
		IRLed:     int32(bo.Uint32(b[patIROffset : patIROffset+4])),
		Accel: Axes{
			X: int16(bo.Uint16(b[patAccelStart : patAccelStart+2])),
			Y: int16(bo.Uint16(b[patAccelStart+2 : patAccelStart+4])),
			Z: int16(bo.Uint16(b[patAccelStart+4 : patAccelStart+6])),
		},
		Temperature: [2]int8{int8(b[patTempStart]), int8(b[patTempStart+1])},
	}

	f.Reserved = make([]byte, 0, patAccelStart-patGapStart+len(b)-PATSize)
	f.Reserved = append(f.Reserved, b[patGapStart:patAccelStart]...)
	f.Reserved = append(f.Reserved, b[PATSize:]...)
	return f, nil
}

// Encode is the inverse of DecodePAT. A frame built by hand with no
// Reserved bytes encodes its reserved span as zeros.
func (f PAT) Encode(order ByteOrder) []byte {
	const gap = patAccelStart - patGapStart

	tail := 0
	if len(f.Reserved) > gap {
		tail = len(f.Reserved) - gap
	}
	b := make([]byte, PATSize+tail)

	bo := order.binary()
	bo.PutUint32(b[0:TimestampSize], f.Timestamp)
	bo.PutUint32(b[patIROffset:patIROffset+4], uint32(f.IRLed))
	bo.PutUint16(b[patAccelStart:patAccelStart+2], uint16(f.Accel.X))
	bo.PutUint16(b[patAccelStart+2:patAccelStart+4], uint16(f.Accel.Y))
	bo.PutUint16(b[patAccelStart+4:patAccelStart+6], uint16(f.Accel.Z))
	b[patTempStart] = byte(f.Temperature[0])
	b[patTempStart+1] = byte(f.Temperature[1])

	n := copy(b[patGapStart:patAccelStart], f.Reserved)
	if n == gap {
		copy(b[PATSize:], f.Reserved[gap:])
	}
	return b
}

func (PAT) Stream() Stream { return StreamAux }

// WithTimestamp returns a copy of f stamped with ts.
func (f PAT) WithTimestamp(ts uint32) PAT {
	f.Timestamp = ts
	return f
}
