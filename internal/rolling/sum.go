// SPDX-License-Identifier: MIT
package rolling

// RunningSum keeps a window sum updated in constant time per step.
//
// The sum over the Start window is accumulated through an integer, truncating
// toward zero after every addition, so fractional samples in the first window
// lose their fractional part. Later steps accumulate in float64. A window that
// grew or stayed level adds its newest sample; one that shrank or stayed level
// subtracts the sample that was oldest on the previous step.
type RunningSum struct {
	mean       bool
	sum        float64
	prevOldest float64
	prevLen    int
}

var _ Window = (*RunningSum)(nil)

// NewSum returns a running sum.
func NewSum() *RunningSum { return &RunningSum{} }

// NewMean returns a running sum that reports the window average.
func NewMean() *RunningSum { return &RunningSum{mean: true} }

func (s *RunningSum) Init(int) {
	s.sum, s.prevOldest, s.prevLen = 0, 0, 0
}

func (s *RunningSum) Step(values []float64, phase Phase) float64 {
	n := len(values)

	if phase == Start {
		seed := 0
		for _, v := range values {
			seed = int(float64(seed) + v)
		}
		s.sum = float64(seed)
	} else {
		if n >= s.prevLen && n > 0 {
			s.sum += values[n-1]
		}
		if n <= s.prevLen && s.prevLen > 0 {
			s.sum -= s.prevOldest
		}
	}

	s.prevLen = n
	if n > 0 {
		s.prevOldest = values[0]
	}

	if s.mean {
		if n == 0 {
			return 0
		}
		return s.sum / float64(n)
	}
	return s.sum
}
