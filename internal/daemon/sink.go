// SPDX-License-Identifier: MIT
package daemon

import (
	"algcore/internal/frame"
	applog "algcore/internal/log"
	"algcore/internal/port"
)

// EEGSink adapts the daemon to a pipe sink. Rejected frames are logged and
// counted; the pipe never sees the error.
func (d *Daemon) EEGSink() port.Sink[frame.EEG] {
	return port.SinkFunc[frame.EEG](func(f frame.EEG) {
		d.logRejected(frame.StreamEEG, d.ConsumeEEG(f))
	})
}

func (d *Daemon) PATSink() port.Sink[frame.PAT] {
	return port.SinkFunc[frame.PAT](func(f frame.PAT) {
		d.logRejected(frame.StreamAux, d.ConsumePAT(f))
	})
}

func (d *Daemon) RawSink() port.Sink[frame.RawFrame] {
	return port.SinkFunc[frame.RawFrame](func(raw frame.RawFrame) {
		d.logRejected(raw.Stream, d.Consume(raw))
	})
}

func (d *Daemon) logRejected(s frame.Stream, err error) {
	if err != nil {
		applog.Debugf("Dropped %s frame: %v", s, err)
	}
}
