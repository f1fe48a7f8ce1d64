package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the full complex transform of a real signal using
// mjibson/go-dsp, which handles non-power-of-2 sizes
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// ComputeOneSided returns the non-negative frequency half of the transform:
// bins 0..len(x)/2 inclusive, the same layout as a real-input FFT.
func (f *FFT) ComputeOneSided(x []float64) []complex128 {
	full := f.Compute(x)
	if len(full) == 0 {
		return full
	}

	return full[:len(x)/2+1]
}

// BinFrequencies returns the centre frequency of each one-sided bin for a
// transform of n samples at sampleRate: k * sampleRate / n
func BinFrequencies(n, sampleRate int) []float64 {
	if n <= 0 || sampleRate <= 0 {
		return []float64{}
	}

	freqs := make([]float64, n/2+1)
	resolution := float64(sampleRate) / float64(n)
	for k := range freqs {
		freqs[k] = float64(k) * resolution
	}

	return freqs
}
