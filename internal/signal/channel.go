// SPDX-License-Identifier: MIT
package signal

import (
	"time"

	"algcore/internal/frame"
)

// Channel identifies one physical sensor of the mask.
type Channel uint8

const (
	EEG Channel = iota
	IRLed
	AccelX
	AccelY
	AccelZ
	Temperature1
	Temperature2

	numChannels
)

// Channels lists every channel in storage order.
var Channels = [numChannels]Channel{EEG, IRLed, AccelX, AccelY, AccelZ, Temperature1, Temperature2}

// PATChannels are the channels filled from one PAT frame.
var PATChannels = []Channel{IRLed, AccelX, AccelY, AccelZ, Temperature1, Temperature2}

// Spec describes how a channel is sampled.
type Spec struct {
	Name   string
	Rate   float64 // samples per second
	Stream frame.Stream
}

// MsPerSample returns the sampling period in milliseconds.
func (s Spec) MsPerSample() float64 { return 1000 / s.Rate }

// Period returns the sampling period.
func (s Spec) Period() time.Duration {
	return time.Duration(float64(time.Second) / s.Rate)
}

var specs = [numChannels]Spec{
	EEG:          {"eeg", 125, frame.StreamEEG},
	IRLed:        {"ir_led", 25, frame.StreamAux},
	AccelX:       {"accel_x", 25, frame.StreamAux},
	AccelY:       {"accel_y", 25, frame.StreamAux},
	AccelZ:       {"accel_z", 25, frame.StreamAux},
	Temperature1: {"temperature_1", 25, frame.StreamAux},
	Temperature2: {"temperature_2", 25, frame.StreamAux},
}

func (c Channel) Spec() Spec {
	if c >= numChannels {
		return Spec{Name: "unknown"}
	}
	return specs[c]
}

func (c Channel) String() string { return c.Spec().Name }

func (c Channel) valid() bool { return c < numChannels }
