package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic numeric helpers shared by the analysis packages, on gonum where it
// covers the operation

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Norm(data, 2) / math.Sqrt(float64(len(data)))
}

// MaxAbs returns the largest absolute value in data, 0 for an empty slice
func MaxAbs(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Max(math.Abs(floats.Max(data)), math.Abs(floats.Min(data)))
}

// ArgMax returns the index of the largest value, -1 for an empty slice.
// Ties resolve to the lowest index.
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MaxIdx(data)
}

// DBToAmplitude converts a level in dB to a linear amplitude ratio (20 log10)
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// AmplitudeToDB converts a linear amplitude ratio to dB. Zero maps to -Inf.
func AmplitudeToDB(amplitude float64) float64 {
	return 20 * math.Log10(amplitude)
}

// Clamp clamps a value between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
