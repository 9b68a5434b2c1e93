// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"algcore/internal/config"
	"algcore/internal/frame"
	applog "algcore/internal/log"
	"algcore/internal/metric"
	"algcore/internal/pipe"
	"algcore/internal/port"
	"algcore/internal/presentation"
	"algcore/internal/sim"
	"algcore/internal/source"
	"algcore/internal/staging"
	"algcore/pkg/algcore"
)

type replayOptions struct {
	eeg, ir      signalFlags
	duration     time.Duration
	factor       float64
	presentation bool
	metrics      bool
	classifier   staging.AmplitudeClassifier
}

// signalFlags locate one recorded signal. Column is a header name, or a
// zero-based index for headerless CSV files. Channel selects a WAV channel.
type signalFlags struct {
	path    string
	column  string
	channel int
}

func newReplayCommand(global *globalOptions) *cobra.Command {
	opts := &replayOptions{classifier: staging.DefaultAmplitudeClassifier()}

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded EEG and pulse signals through the algorithms",
		Long: `Replay cuts recorded signals into device frames and feeds them through the
frame codec and every algorithm on a virtual clock, then prints the hypnogram.

Signals are read from CSV columns or WAV channels.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loaded()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("real-time-factor") {
				cfg.Simulator.RealTimeFactor = opts.factor
			}
			if opts.presentation {
				cfg.Presentation.Enabled = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runReplay(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	flags := replayCmd.Flags()
	flags.StringVar(&opts.eeg.path, "eeg", "", "EEG recording (.csv or .wav)")
	flags.StringVar(&opts.eeg.column, "eeg-column", "eeg", "CSV column holding EEG samples")
	flags.IntVar(&opts.eeg.channel, "eeg-channel", 0, "WAV channel holding EEG samples")
	flags.StringVar(&opts.ir.path, "ir", "", "Infrared pulse recording (.csv or .wav)")
	flags.StringVar(&opts.ir.column, "ir-column", "ir", "CSV column holding IR samples")
	flags.IntVar(&opts.ir.channel, "ir-channel", 0, "WAV channel holding IR samples")
	flags.DurationVarP(&opts.duration, "duration", "d", 0,
		"Virtual time to replay. 0 replays until the recordings are exhausted")
	flags.Float64VarP(&opts.factor, "real-time-factor", "f", config.DefaultRealTimeFactor,
		"Wall time per virtual time. 0 replays as fast as possible, 1 in real time")
	flags.BoolVarP(&opts.presentation, "presentation", "p", false,
		"Enable presentation output for the whole replay")
	flags.BoolVar(&opts.metrics, "metrics", false, "Print metrics after the replay")
	flags.Float64Var(&opts.classifier.DeepAbove, "deep-above", opts.classifier.DeepAbove,
		"EEG standard deviation above which an epoch is Deep")
	flags.Float64Var(&opts.classifier.WakeIRAbove, "wake-ir-above", opts.classifier.WakeIRAbove,
		"IR coefficient of variation above which an epoch is Wake")
	_ = replayCmd.MarkFlagRequired("eeg")

	return replayCmd
}

// replayReport accumulates what the algorithms produced.
type replayReport struct {
	staging      staging.Result
	presentation int
	pulse        int
}

func runReplay(ctx context.Context, cfg *config.Config, opts *replayOptions, out io.Writer) error {
	eegSignal, err := loadSignal(opts.eeg)
	if err != nil {
		return err
	}
	var irSignal port.Source[float64] = port.Zeros[float64](0)
	if opts.ir.path != "" {
		if irSignal, err = loadSignal(opts.ir); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	m, err := metric.NewRegistered(reg)
	if err != nil {
		return err
	}

	report := &replayReport{}
	core, err := algcore.New(algcore.Options{
		Config:     *cfg,
		Classifier: opts.classifier,
		Metrics:    m,
		OnStaging:  func(r staging.Result) { report.staging = r },
		OnPresentation: func(r presentation.Result) {
			report.presentation++
			report.pulse += len(r.PulseData)
		},
	})
	if err != nil {
		return err
	}

	order := cfg.Order()
	eegEP := port.NewEndpoint[frame.EEG](port.SinkFunc[frame.EEG](func(f frame.EEG) {
		if err := core.FeedStream0(f.Encode(order)); err != nil {
			applog.Debugf("Dropped eeg frame: %v", err)
		}
	}))
	patEP := port.NewEndpoint[frame.PAT](port.SinkFunc[frame.PAT](func(f frame.PAT) {
		if err := core.FeedStream1(f.Encode(order)); err != nil {
			applog.Debugf("Dropped aux frame: %v", err)
		}
	}))
	defer runtime.KeepAlive(eegEP)
	defer runtime.KeepAlive(patEP)

	eegPipe := pipe.New[frame.EEG](source.NewEEGFrames[float64](eegSignal), eegEP.Weak(),
		pipe.WithName[frame.EEG]("eeg"), pipe.StampFrames[frame.EEG](), pipe.WithMetrics[frame.EEG](m))
	patPipe := pipe.New[frame.PAT](source.NewPATFrames[float64](irSignal), patEP.Weak(),
		pipe.WithName[frame.PAT]("pat"), pipe.StampFrames[frame.PAT](), pipe.WithMetrics[frame.PAT](m))

	s := sim.New(sim.WithMetrics(m))
	if err := s.AddStreamingPipe(eegPipe, cfg.Simulator.EEGInterval); err != nil {
		return err
	}
	if err := s.AddStreamingPipe(patPipe, cfg.Simulator.PATInterval); err != nil {
		return err
	}

	if err := core.StartSleep(); err != nil {
		return err
	}
	if cfg.Presentation.Enabled {
		if err := core.StartPresentation(); err != nil {
			return err
		}
	}

	applog.Infof("Replaying session %s at real time factor %v", core.Session(), cfg.Simulator.RealTimeFactor)
	runErr := s.PassTime(ctx, opts.duration, cfg.Simulator.RealTimeFactor)
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		applog.Warnf("Replay interrupted at %v", s.Now())
		runErr = nil
	}

	if err := core.StopSleep(); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	printReport(out, s.Now(), report)
	if opts.metrics {
		return printMetrics(out, reg)
	}
	return nil
}

// loadSignal reads a WAV channel or a CSV column depending on the extension.
func loadSignal(f signalFlags) (*port.SliceSource[float64], error) {
	if strings.EqualFold(filepath.Ext(f.path), ".wav") {
		return source.WAVChannel[float64](f.path, f.channel)
	}
	return csvColumn[float64](f.path, f.column)
}

// csvColumn treats a numeric column as a zero-based index into a headerless
// file and anything else as a header name.
func csvColumn[T source.Number](path, column string) (*port.SliceSource[T], error) {
	if idx, err := strconv.Atoi(column); err == nil {
		return source.CSVIndex[T](path, idx)
	}
	return source.CSVColumn[T](path, column)
}

func printReport(w io.Writer, elapsed time.Duration, r *replayReport) {
	fmt.Fprintf(w, "Replayed %v of signal\n", elapsed)
	fmt.Fprintf(w, "Epochs: %d\n", len(r.staging.Stages))

	counts := make(map[staging.Stage]int)
	for _, e := range r.staging.Stages {
		fmt.Fprintf(w, "  %10v  %s\n", time.Duration(e.Timestamp)*time.Millisecond, e.Stage)
		counts[e.Stage]++
	}
	for _, st := range []staging.Stage{staging.Wake, staging.REM, staging.Light, staging.Deep, staging.Unknown} {
		if n := counts[st]; n > 0 {
			fmt.Fprintf(w, "%-8s %d\n", st.String()+":", n)
		}
	}
	if r.presentation > 0 {
		fmt.Fprintf(w, "Presentation batches: %d (%d pulse samples)\n", r.presentation, r.pulse)
	}
}

func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
