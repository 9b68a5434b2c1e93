// SPDX-License-Identifier: MIT
/*
Package staging classifies sleep stages online from the aggregated signal.

The algorithm slides paired EEG and infrared windows over the signal and asks
an external Classifier for one stage per window position. After every new
epoch, and once more at the end of the session, the whole staging history is
sent to the result sinks.
*/
package staging

import (
	"errors"
	"fmt"

	"algcore/internal/frame"
	applog "algcore/internal/log"
	"algcore/internal/port"
	"algcore/internal/signal"
)

// Stage is a sleep stage label.
type Stage int

const (
	Unknown Stage = iota
	Wake
	REM
	Light
	Deep
)

func (s Stage) String() string {
	switch s {
	case Wake:
		return "wake"
	case REM:
		return "rem"
	case Light:
		return "light"
	case Deep:
		return "deep"
	default:
		return "unknown"
	}
}

// Classifier maps one EEG window and the matching infrared window to a stage.
type Classifier interface {
	Classify(eeg, ir []float64) (Stage, error)
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(eeg, ir []float64) (Stage, error)

func (f ClassifierFunc) Classify(eeg, ir []float64) (Stage, error) { return f(eeg, ir) }

// StagedEpoch is one classified window. Timestamp is the device time in
// milliseconds of the last sample covered.
type StagedEpoch struct {
	Stage     Stage
	Timestamp uint64
}

// Result carries the staging history of the session so far.
type Result struct {
	Stages []StagedEpoch
}

// Config sizes the analysis windows in samples.
type Config struct {
	EEGWindow   int `yaml:"eeg_window"`
	IRWindow    int `yaml:"ir_window"`
	EEGInterval int `yaml:"eeg_interval"`
	IRInterval  int `yaml:"ir_interval"`
}

var ErrInvalidConfig = errors.New("staging: invalid config")

// DefaultConfig covers 81.92 s per window and advances by a quarter window.
func DefaultConfig() Config {
	return Config{
		EEGWindow:   10240,
		IRWindow:    2048,
		EEGInterval: 2560,
		IRInterval:  512,
	}
}

func (c Config) Validate() error {
	switch {
	case c.EEGWindow <= 0 || c.IRWindow <= 0:
		return fmt.Errorf("%w: windows must be positive", ErrInvalidConfig)
	case c.EEGInterval <= 0 || c.IRInterval <= 0:
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	case c.EEGInterval > c.EEGWindow || c.IRInterval > c.IRWindow:
		return fmt.Errorf("%w: interval larger than window", ErrInvalidConfig)
	}
	return nil
}

// Algorithm is the online staging signal.Algorithm.
type Algorithm struct {
	cfg   Config
	model Classifier
	sinks []port.Sink[Result]

	// Epoch k covers samples from eegOrigin and irOrigin onwards: an
	// algorithm attached mid-session never classifies earlier data.
	attached  bool
	eegOrigin int
	irOrigin  int

	epochs  int
	firstTS uint32
	started bool
	history []StagedEpoch
}

var _ signal.Algorithm = (*Algorithm)(nil)

func New(cfg Config, model Classifier, sinks ...port.Sink[Result]) (*Algorithm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("%w: nil classifier", ErrInvalidConfig)
	}
	return &Algorithm{cfg: cfg, model: model, sinks: sinks}, nil
}

func (a *Algorithm) Name() string { return "staging" }

// Config returns the window configuration.
func (a *Algorithm) Config() Config { return a.cfg }

func (a *Algorithm) ResetState() {
	a.attached = false
	a.eegOrigin, a.irOrigin = 0, 0
	a.epochs = 0
	a.firstTS = 0
	a.started = false
	a.history = nil
}

func (a *Algorithm) ProcessInput(v signal.View) {
	a.begin(v)
	if !a.started && v.Len(signal.EEG) > a.eegOrigin {
		a.firstTS = firstTimestamp(v, a.eegOrigin)
		a.started = true
	}

	classified := false
	for a.ready(v) {
		a.classify(v)
		classified = true
	}
	if classified {
		a.emit()
	}
}

func (a *Algorithm) EndStreaming(v signal.View) {
	a.begin(v)
	for a.ready(v) {
		a.classify(v)
	}
	applog.Infof("Staging finished with %d epochs", len(a.history))
	a.emit()
}

// History returns a copy of the stages classified so far.
func (a *Algorithm) History() []StagedEpoch {
	return append([]StagedEpoch(nil), a.history...)
}

// begin pins the epoch origin to the first sample this algorithm was shown.
func (a *Algorithm) begin(v signal.View) {
	if a.attached {
		return
	}
	a.eegOrigin = v.Start(signal.EEG)
	a.irOrigin = v.Start(signal.IRLed)
	a.attached = true
}

// firstTimestamp derives the device time of EEG sample origin from the
// latest frame timestamp.
func firstTimestamp(v signal.View, origin int) uint32 {
	last, _ := v.LastTimestamp(frame.StreamEEG)
	back := int64(v.Len(signal.EEG)-frame.EEGLength-origin) * int64(signal.EEG.Spec().MsPerSample())
	return uint32(max(int64(last)-back, 0))
}

func (a *Algorithm) ready(v signal.View) bool {
	eegEnd := a.eegOrigin + a.epochs*a.cfg.EEGInterval + a.cfg.EEGWindow
	irEnd := a.irOrigin + a.epochs*a.cfg.IRInterval + a.cfg.IRWindow
	return eegEnd <= v.Len(signal.EEG) && irEnd <= v.Len(signal.IRLed)
}

func (a *Algorithm) classify(v signal.View) {
	offset := a.epochs * a.cfg.EEGInterval
	eegFrom := a.eegOrigin + offset
	irFrom := a.irOrigin + a.epochs*a.cfg.IRInterval
	eegTo := eegFrom + a.cfg.EEGWindow

	stage, err := a.model.Classify(
		v.Floats(signal.EEG, eegFrom, eegTo),
		v.Floats(signal.IRLed, irFrom, irFrom+a.cfg.IRWindow),
	)
	if err != nil {
		applog.Warnw("Staging epoch unclassified", "epoch", a.epochs, "error", err)
		stage = Unknown
	}

	endMs := float64(offset+a.cfg.EEGWindow-1) * signal.EEG.Spec().MsPerSample()
	a.history = append(a.history, StagedEpoch{
		Stage:     stage,
		Timestamp: uint64(a.firstTS) + uint64(endMs),
	})
	a.epochs++
}

func (a *Algorithm) emit() {
	res := Result{Stages: a.History()}
	for _, s := range a.sinks {
		s.Consume(res)
	}
}
