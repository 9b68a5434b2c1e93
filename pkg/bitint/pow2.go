// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-two helpers used to size signal buffers.

A night of EEG at 125 Hz is a few million samples. Rounding each channel's
preallocation up to a power of two keeps append from reallocating in the
middle of a session, and keeps every channel's growth step identical.

	n := bitint.NextPowerOfTwo(int(8 * 3600 * 125)) // 4194304

NextPowerOfTwo subtracts one before taking the bit length so that exact
powers of two map to themselves:

	size 8: bits.Len(7) = 3, 1<<3 = 8
	size 9: bits.Len(8) = 4, 1<<4 = 16
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size, and 1 for
// size <= 0.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
