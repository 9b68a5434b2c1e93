// SPDX-License-Identifier: MIT
/*
Package presentation streams live signal to a feedback device while the user
has it switched on.

The baseline of the infrared pulse is tracked at all times so that output is
meaningful from the first frame after Activate. Pulse data is each new IR
sample minus the minimum over the trailing baseline window.
*/
package presentation

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	applog "algcore/internal/log"
	"algcore/internal/port"
	"algcore/internal/rolling"
	"algcore/internal/signal"
)

// Result is one batch of presentation output.
type Result struct {
	BrainWaves []int16
	PulseData  []int32
}

// Config tunes the algorithm.
type Config struct {
	// BaselineWindow is the number of IR samples the pulse baseline spans.
	BaselineWindow int `yaml:"baseline_window"`
}

var ErrInvalidConfig = errors.New("presentation: invalid config")

// DefaultConfig uses a five second baseline at the IR sampling rate.
func DefaultConfig() Config {
	return Config{BaselineWindow: 125}
}

func (c Config) Validate() error {
	if c.BaselineWindow <= 0 {
		return fmt.Errorf("%w: baseline window must be positive", ErrInvalidConfig)
	}
	return nil
}

// Algorithm is the online presentation signal.Algorithm. Activate and
// Deactivate may be called from any goroutine.
type Algorithm struct {
	cfg   Config
	sinks []port.Sink[Result]

	active   atomic.Bool
	baseline *rolling.Scanner
}

var _ signal.Algorithm = (*Algorithm)(nil)

func New(cfg Config, sinks ...port.Sink[Result]) (*Algorithm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Algorithm{cfg: cfg, sinks: sinks}
	a.ResetState()
	return a, nil
}

func (a *Algorithm) Name() string { return "presentation" }

func (a *Algorithm) Activate() {
	if !a.active.Swap(true) {
		applog.Infof("Presentation activated")
	}
}

func (a *Algorithm) Deactivate() {
	if a.active.Swap(false) {
		applog.Infof("Presentation deactivated")
	}
}

func (a *Algorithm) Active() bool { return a.active.Load() }

// ResetState drops the pulse baseline. The activation switch is left as is.
func (a *Algorithm) ResetState() {
	a.baseline = rolling.NewScanner(a.cfg.BaselineWindow, rolling.NewMin())
}

func (a *Algorithm) ProcessInput(v signal.View) {
	ir := v.New(signal.IRLed)
	pulse := make([]int32, len(ir))
	for i, s := range ir {
		// The baseline never exceeds s, so only the upper bound can overflow.
		d := int64(s) - int64(a.baseline.Push(float64(s)))
		pulse[i] = int32(min(d, math.MaxInt32))
	}

	if !a.active.Load() {
		return
	}

	eeg := v.New(signal.EEG)
	if len(eeg) == 0 && len(pulse) == 0 {
		return
	}

	waves := make([]int16, len(eeg))
	for i, s := range eeg {
		waves[i] = int16(s)
	}

	res := Result{BrainWaves: waves, PulseData: pulse}
	for _, s := range a.sinks {
		s.Consume(res)
	}
}

func (a *Algorithm) EndStreaming(signal.View) {
	a.Deactivate()
}
