// SPDX-License-Identifier: MIT
/*
Package sim drives pipes from a single logical clock.

Each registered pipe fires at its own fixed interval, first at one interval
after the moment it was added. Advancing the clock steps every due pipe once
per elapsed interval, in global virtual-time order with registration order
breaking ties, and stamps each step with the virtual time it was due at.

Pacing:
- factor <= 0 runs every due step immediately
- factor > 0 blocks so that wall time tracks virtual time scaled by factor
*/
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/btree"

	applog "algcore/internal/log"
	"algcore/internal/metric"
	"algcore/internal/pipe"
)

var ErrInvalidInterval = errors.New("sim: interval must be positive")

type event struct {
	due time.Duration
	idx int
}

func eventLess(a, b event) bool {
	if a.due != b.due {
		return a.due < b.due
	}
	return a.idx < b.idx
}

type registration struct {
	pipe     pipe.Stepper
	interval time.Duration
}

// Simulator schedules registered pipes on a virtual clock. It is not safe
// for concurrent use.
type Simulator struct {
	now   time.Duration
	pipes []registration
	queue *btree.BTreeG[event]

	metrics *metric.Metrics
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithMetrics reports the virtual clock as a gauge.
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Simulator) { s.metrics = m }
}

func New(opts ...Option) *Simulator {
	s := &Simulator{queue: btree.NewG(8, eventLess)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddStreamingPipe registers p to be stepped every interval, starting one
// interval from now. The caller keeps p to inspect its state.
func (s *Simulator) AddStreamingPipe(p pipe.Stepper, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}
	idx := len(s.pipes)
	s.pipes = append(s.pipes, registration{pipe: p, interval: interval})
	s.queue.ReplaceOrInsert(event{due: s.now + interval, idx: idx})
	return nil
}

// Now returns the logical clock.
func (s *Simulator) Now() time.Duration { return s.now }

// Pending returns the number of pipes still scheduled.
func (s *Simulator) Pending() int { return s.queue.Len() }

// PassTime advances the clock by d and steps every pipe that falls due on the
// way. A d <= 0 drains instead: it runs until no pipe is Active and leaves the
// clock at the last processed due time.
//
// With factor > 0 each step waits for wall time start+(due-now)*factor and
// the call returns no earlier than start+d*factor. Cancelling ctx stops the
// wait and returns ctx.Err(); steps already taken stay taken.
func (s *Simulator) PassTime(ctx context.Context, d time.Duration, factor float64) error {
	start := time.Now()
	origin := s.now
	drain := d <= 0
	target := s.now + d

	for {
		ev, ok := s.queue.Min()
		if !ok || (!drain && ev.due > target) {
			break
		}
		s.queue.DeleteMin()

		reg := s.pipes[ev.idx]
		if stopped(reg.pipe) {
			continue
		}

		if factor > 0 {
			if err := sleepUntil(ctx, start.Add(scale(ev.due-origin, factor))); err != nil {
				s.queue.ReplaceOrInsert(ev)
				return err
			}
		}

		s.setNow(ev.due)
		reg.pipe.StepAt(ev.due)

		if !stopped(reg.pipe) {
			s.queue.ReplaceOrInsert(event{due: ev.due + reg.interval, idx: ev.idx})
		}
	}

	if drain {
		applog.Debugf("Simulator drained at %v", s.now)
		return nil
	}

	s.setNow(target)
	if factor > 0 {
		return sleepUntil(ctx, start.Add(scale(d, factor)))
	}
	return nil
}

// Drain steps every remaining pipe until it is Depleted or Broken, without
// pacing.
func (s *Simulator) Drain(ctx context.Context) error {
	return s.PassTime(ctx, 0, 0)
}

func (s *Simulator) setNow(t time.Duration) {
	s.now = t
	if s.metrics != nil {
		s.metrics.VirtualTime.Set(t.Seconds())
	}
}

func stopped(p pipe.Stepper) bool {
	return p.IsDepleted() || p.IsBroken()
}

func scale(d time.Duration, factor float64) time.Duration {
	return time.Duration(float64(d) * factor)
}

func sleepUntil(ctx context.Context, deadline time.Time) error {
	wait := time.Until(deadline)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
