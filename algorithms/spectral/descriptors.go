package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// flatnessFloor keeps log() away from zero bins
const flatnessFloor = 1e-10

// Descriptors summarise a frame's shape. They are diagnostics attached to
// detection reports; a low flatness means the frame is tonal and its peaks
// are likely to be meaningful pitches.
type Descriptors struct {
	PeakFrequency float64 `json:"peak_frequency_hz"` // strongest bin
	Centroid      float64 `json:"centroid_hz"`
	Rolloff       float64 `json:"rolloff_hz"`
	Flatness      float64 `json:"flatness"`
	MeanMagnitude float64 `json:"mean_magnitude"`
	MaxMagnitude  float64 `json:"max_magnitude"`
}

// Describe computes the frame descriptors; rolloffPercent is the energy
// fraction used for the rolloff frequency, typically 0.85.
func Describe(frame *Frame, rolloffPercent float64) Descriptors {
	if frame == nil || frame.Len() == 0 {
		return Descriptors{}
	}

	return Descriptors{
		PeakFrequency: frame.Frequencies[common.ArgMax(frame.Magnitudes)],
		Centroid:      Centroid(frame),
		Rolloff:       Rolloff(frame, rolloffPercent),
		Flatness:      Flatness(frame.Magnitudes),
		MeanMagnitude: common.Mean(frame.Magnitudes),
		MaxMagnitude:  common.MaxAbs(frame.Magnitudes),
	}
}

// Centroid is the magnitude-weighted mean frequency of the frame
func Centroid(frame *Frame) float64 {
	total := floats.Sum(frame.Magnitudes)
	if total == 0 {
		return 0
	}
	return floats.Dot(frame.Frequencies, frame.Magnitudes) / total
}

// Rolloff returns the lowest frequency below which the given fraction of the
// frame's energy lies
func Rolloff(frame *Frame, percent float64) float64 {
	n := frame.Len()
	if n == 0 {
		return 0
	}

	total := floats.Dot(frame.Magnitudes, frame.Magnitudes)
	if total == 0 {
		return 0
	}

	target := common.Clamp(percent, 0, 1) * total
	cumulative := 0.0
	for i, mag := range frame.Magnitudes {
		cumulative += mag * mag
		if cumulative >= target {
			return frame.Frequencies[i]
		}
	}

	return frame.Frequencies[n-1]
}

// Flatness is the ratio of geometric to arithmetic mean of the magnitudes,
// in [0, 1]. Tonal spectra score near 0, noise near 1.
func Flatness(magnitudes []float64) float64 {
	if len(magnitudes) == 0 {
		return 0
	}

	logSum := 0.0
	valid := 0
	for _, mag := range magnitudes {
		if mag > flatnessFloor {
			logSum += math.Log(mag)
			valid++
		}
	}
	if valid == 0 {
		return 0
	}

	arithmetic := common.Mean(magnitudes)
	if arithmetic <= flatnessFloor {
		return 0
	}

	return math.Min(math.Exp(logSum/float64(valid))/arithmetic, 1)
}
