// SPDX-License-Identifier: MIT
package rolling

import (
	"math"

	"github.com/google/btree"
)

type minEntry struct {
	v   float64
	seq uint64
}

func minLess(a, b minEntry) bool {
	if a.v != b.v {
		return a.v < b.v
	}
	return a.seq < b.seq
}

// Min tracks the window minimum in an ordered multiset.
//
// Each sample is stored with its insertion sequence number, so equal values
// are distinct entries and eviction always removes the one that entered the
// window first.
type Min struct {
	length int
	tree   *btree.BTreeG[minEntry]
	fifo   []minEntry
	seq    uint64
}

var _ Window = (*Min)(nil)

func NewMin() *Min {
	return &Min{tree: btree.NewG(16, minLess)}
}

func (m *Min) Init(length int) {
	m.length = length
	m.reset()
}

func (m *Min) reset() {
	m.tree.Clear(false)
	m.fifo = m.fifo[:0]
	m.seq = 0
}

func (m *Min) Step(values []float64, phase Phase) float64 {
	if phase == Start {
		m.reset()
		for _, v := range values {
			m.push(v)
		}
		m.trim(len(values))
		return m.min()
	}

	if len(values) >= len(m.fifo) && len(values) > 0 {
		m.push(values[len(values)-1])
	}
	m.trim(len(values))
	return m.min()
}

func (m *Min) push(v float64) {
	e := minEntry{v: v, seq: m.seq}
	m.seq++
	m.tree.ReplaceOrInsert(e)
	m.fifo = append(m.fifo, e)
}

// trim evicts the oldest entries until at most n remain, never more than the
// configured length.
func (m *Min) trim(n int) {
	if m.length > 0 {
		n = min(n, m.length)
	}
	for len(m.fifo) > n {
		m.tree.Delete(m.fifo[0])
		m.fifo = m.fifo[1:]
	}
}

func (m *Min) min() float64 {
	e, ok := m.tree.Min()
	if !ok {
		return math.NaN()
	}
	return e.v
}

// Len returns the number of tracked samples.
func (m *Min) Len() int { return m.tree.Len() }
