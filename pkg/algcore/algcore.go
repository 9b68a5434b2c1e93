// SPDX-License-Identifier: MIT
/*
Package algcore is the embedding API of the algorithm core.

A host builds one Core per connected mask, opens a night with StartSleep,
forwards the bytes of each device stream as they arrive and closes the night
with StopSleep. Results are delivered to the callbacks given in Options on the
goroutine that fed the frame.

	core, err := algcore.New(algcore.Options{
		Classifier: staging.DefaultAmplitudeClassifier(),
		OnStaging:  func(r staging.Result) { ... },
	})
	core.StartSleep()
	core.FeedStream0(eegBytes)
	core.FeedStream1(auxBytes)
	core.StopSleep()

A Core is safe for use by multiple goroutines.
*/
package algcore

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"algcore/internal/config"
	"algcore/internal/daemon"
	"algcore/internal/frame"
	applog "algcore/internal/log"
	"algcore/internal/metric"
	"algcore/internal/port"
	"algcore/internal/presentation"
	"algcore/internal/staging"
)

var (
	ErrNoClassifier   = errors.New("algcore: a staging classifier is required")
	ErrNoPresentation = errors.New("algcore: presentation is not configured")
)

// Options configures a Core. Only Classifier is required.
type Options struct {
	Config     config.Config
	Classifier staging.Classifier
	Metrics    *metric.Metrics

	OnStaging      func(staging.Result)
	OnPresentation func(presentation.Result)
}

// Core owns one daemon and its algorithms.
type Core struct {
	mu sync.Mutex

	daemon       *daemon.Daemon
	staging      *staging.Algorithm
	presentation *presentation.Algorithm
	log          *staging.LoggingSink
}

// New builds a Core. A zero Options.Config is replaced by config.Default().
// Presentation is wired only when Config.Presentation.Enabled is set.
func New(opts Options) (*Core, error) {
	if opts.Classifier == nil {
		return nil, ErrNoClassifier
	}

	cfg := opts.Config
	if cfg.LogLevel == "" {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dopts := []daemon.Option{
		daemon.WithByteOrder(cfg.Order()),
		daemon.WithCapacity(cfg.Frame.Capacity),
	}
	if opts.Metrics != nil {
		dopts = append(dopts, daemon.WithMetrics(opts.Metrics))
	}

	c := &Core{
		daemon: daemon.New(dopts...),
		log:    &staging.LoggingSink{},
	}

	sinks := []port.Sink[staging.Result]{c.log}
	if opts.OnStaging != nil {
		sinks = append(sinks, port.SinkFunc[staging.Result](opts.OnStaging))
	}
	st, err := staging.New(cfg.Staging, opts.Classifier, sinks...)
	if err != nil {
		return nil, err
	}
	c.staging = st
	c.daemon.AddStreamingAlgorithm(st)

	if cfg.Presentation.Enabled {
		var psinks []port.Sink[presentation.Result]
		if opts.OnPresentation != nil {
			psinks = append(psinks, port.SinkFunc[presentation.Result](opts.OnPresentation))
		}
		pr, err := presentation.New(cfg.Presentation.Config, psinks...)
		if err != nil {
			return nil, err
		}
		c.presentation = pr
		c.daemon.AddStreamingAlgorithm(pr)
	}

	return c, nil
}

// StartSleep opens a session.
func (c *Core) StartSleep() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.daemon.StartProcessing()
}

// StopSleep closes the session and flushes the final staging result.
func (c *Core) StopSleep() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.daemon.EndProcessing()
}

// FeedStream0 accepts one EEG frame.
func (c *Core) FeedStream0(b []byte) error {
	return c.feed(frame.StreamEEG, b)
}

// FeedStream1 accepts one auxiliary frame: pulse, motion and temperature.
func (c *Core) FeedStream1(b []byte) error {
	return c.feed(frame.StreamAux, b)
}

// FeedStream2 accepts the device's third stream, which carries nothing the
// algorithms consume.
func (c *Core) FeedStream2(b []byte) error {
	applog.Debugf("Ignoring %d bytes on stream2", len(b))
	return nil
}

func (c *Core) feed(s frame.Stream, b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.daemon.ConsumeBytes(s, b)
}

// StartPresentation switches live presentation output on.
func (c *Core) StartPresentation() error {
	if c.presentation == nil {
		return ErrNoPresentation
	}
	c.presentation.Activate()
	return nil
}

// StopPresentation switches live presentation output off.
func (c *Core) StopPresentation() error {
	if c.presentation == nil {
		return ErrNoPresentation
	}
	c.presentation.Deactivate()
	return nil
}

// Sleeping reports whether a session is open.
func (c *Core) Sleeping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.daemon.Processing()
}

// Session returns the id of the current or most recent session.
func (c *Core) Session() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.daemon.Session()
}

// Hypnogram returns the stages classified so far in the current or most
// recent session.
func (c *Core) Hypnogram() []staging.StagedEpoch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staging.History()
}

// LastStaging returns the most recent staging result delivered to sinks.
func (c *Core) LastStaging() staging.Result {
	return c.log.Last()
}
