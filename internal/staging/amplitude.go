// SPDX-License-Identifier: MIT
package staging

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrEmptyWindow = errors.New("staging: empty window")

// AmplitudeClassifier is a heuristic stand-in for a trained model. It stages
// by the EEG standard deviation in raw units: large slow waves read as Deep,
// quiet signal with a steady pulse as Light, and a restless pulse as Wake.
// It is meant for replays and tests, not for scoring real nights.
type AmplitudeClassifier struct {
	DeepAbove   float64 // EEG std dev above which the window is Deep
	WakeIRAbove float64 // IR coefficient of variation above which the window is Wake
}

func DefaultAmplitudeClassifier() AmplitudeClassifier {
	return AmplitudeClassifier{DeepAbove: 75, WakeIRAbove: 0.1}
}

func (c AmplitudeClassifier) Classify(eeg, ir []float64) (Stage, error) {
	if len(eeg) < 2 || len(ir) < 2 {
		return Unknown, ErrEmptyWindow
	}

	irMean, irStd := stat.MeanStdDev(ir, nil)
	if irMean != 0 && irStd/math.Abs(irMean) > c.WakeIRAbove {
		return Wake, nil
	}
	if stat.StdDev(eeg, nil) > c.DeepAbove {
		return Deep, nil
	}
	return Light, nil
}
