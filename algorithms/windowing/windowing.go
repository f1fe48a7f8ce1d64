// Package windowing selects analysis window functions by name. Coefficients
// come from go-dsp's window package.
package windowing

import (
	"fmt"
	"strings"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Function names a window function.
type Function string

const (
	Rectangular Function = "rectangular"
	Hann        Function = "hann"
	Hamming     Function = "hamming"
	Blackman    Function = "blackman"
	Bartlett    Function = "bartlett"
	FlatTop     Function = "flattop"
)

var generators = map[Function]func(int) []float64{
	Rectangular: window.Rectangular,
	Hann:        window.Hann,
	Hamming:     window.Hamming,
	Blackman:    window.Blackman,
	Bartlett:    window.Bartlett,
	FlatTop:     window.FlatTop,
}

// Parse maps a configuration string to a Function. The empty string selects
// Rectangular.
func Parse(name string) (Function, error) {
	fn := Function(strings.ToLower(strings.TrimSpace(name)))
	if fn == "" {
		return Rectangular, nil
	}
	if _, ok := generators[fn]; !ok {
		return "", fmt.Errorf("unknown window function: %q", name)
	}
	return fn, nil
}

// Coefficients returns the window of the given size. Unknown functions fall
// back to Rectangular.
func (f Function) Coefficients(size int) []float64 {
	if size <= 0 {
		return []float64{}
	}
	gen, ok := generators[f]
	if !ok || size == 1 {
		gen = window.Rectangular
	}
	return gen(size)
}

// Apply returns a windowed copy of signal together with the window's
// coherent gain (mean coefficient), which callers divide amplitudes by to
// keep sinusoid magnitudes comparable across window functions.
func (f Function) Apply(signal []float64) ([]float64, float64) {
	if len(signal) == 0 {
		return []float64{}, 1
	}
	if f == Rectangular || f == "" {
		return signal, 1
	}

	coeffs := f.Coefficients(len(signal))
	gain := floats.Sum(coeffs) / float64(len(coeffs))
	if gain == 0 {
		gain = 1
	}

	windowed := make([]float64, len(signal))
	floats.MulTo(windowed, signal, coeffs)
	return windowed, gain
}
