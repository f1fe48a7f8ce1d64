package waveform

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Diff returns the first difference x[i+1]-x[i]. Signals shorter than two
// samples give an empty result.
func Diff(x []float64) []float64 {
	if len(x) < 2 {
		return []float64{}
	}
	d := make([]float64, len(x)-1)
	floats.SubTo(d, x[1:], x[:len(x)-1])
	return d
}

// Normalize returns a copy of x scaled so that its largest absolute value is
// 1. An all-zero signal is returned as a zero copy.
func Normalize(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	if len(x) == 0 {
		return out
	}

	peak := math.Max(math.Abs(floats.Max(x)), math.Abs(floats.Min(x)))
	if peak == 0 {
		return out
	}
	floats.Scale(1/peak, out)
	return out
}

// TimeAxis returns the timestamp in seconds of each of n samples.
func TimeAxis(n, sampleRate int) []float64 {
	if n <= 0 || sampleRate <= 0 {
		return []float64{}
	}
	axis := make([]float64, n)
	if n == 1 {
		return axis
	}
	floats.Span(axis, 0, float64(n-1)/float64(sampleRate))
	return axis
}
