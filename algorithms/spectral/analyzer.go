package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-pitch/algorithms/windowing"
	"github.com/RyanBlaney/sonido-pitch/logging"
)

var (
	// ErrInsufficientSamples is returned when an analysis window resolves to
	// fewer than two samples.
	ErrInsufficientSamples = errors.New("analysis window has fewer than 2 samples")

	ErrInvalidWindow     = errors.New("invalid analysis window")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// minSamples is the shortest slice a spectrum is computed for
const minSamples = 2

// indexEpsilon absorbs float error when a time that was derived from a
// sample index is converted back (e.g. (n-1)/rate * rate).
const indexEpsilon = 1e-9

// Window is an analysis time range [Start, End) in seconds.
type Window struct {
	Start float64
	End   float64
}

// Frame is a one-sided amplitude spectrum. Frequencies are ascending bin
// centres in Hz, Magnitudes the matching non-negative amplitudes.
type Frame struct {
	Frequencies []float64
	Magnitudes  []float64
}

// Len returns the number of bins.
func (f *Frame) Len() int {
	return len(f.Magnitudes)
}

// Resolution returns the bin spacing in Hz, 0 for frames with fewer than two
// bins.
func (f *Frame) Resolution() float64 {
	if len(f.Frequencies) < 2 {
		return 0
	}
	return f.Frequencies[1] - f.Frequencies[0]
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWindowFunction tapers each slice before the transform. Magnitudes are
// corrected by the window's coherent gain.
func WithWindowFunction(fn windowing.Function) Option {
	return func(a *Analyzer) {
		a.windowFn = fn
	}
}

// WithLogger replaces the analyzer's logger.
func WithLogger(logger logging.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// Analyzer computes spectra of time windows of a mono signal. It holds no
// mutable analysis state; the window is passed to every call, so one
// Analyzer may be shared between goroutines.
type Analyzer struct {
	samples    []float64
	sampleRate int
	fft        *FFT
	windowFn   windowing.Function
	logger     logging.Logger
}

// NewAnalyzer creates an analyzer over samples taken at sampleRate Hz.
func NewAnalyzer(samples []float64, sampleRate int, opts ...Option) (*Analyzer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	a := &Analyzer{
		samples:    samples,
		sampleRate: sampleRate,
		fft:        NewFFT(),
		windowFn:   windowing.Rectangular,
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_analyzer",
		}),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// SampleRate returns the sample rate in Hz.
func (a *Analyzer) SampleRate() int {
	return a.sampleRate
}

// DefaultWindow spans from 0 to the timestamp of the last sample.
func (a *Analyzer) DefaultWindow() Window {
	if len(a.samples) == 0 {
		return Window{}
	}
	return Window{Start: 0, End: float64(len(a.samples)-1) / float64(a.sampleRate)}
}

// TimeAxis returns the timestamp in seconds of every sample.
func (a *Analyzer) TimeAxis() []float64 {
	axis := make([]float64, len(a.samples))
	for i := range axis {
		axis[i] = float64(i) / float64(a.sampleRate)
	}
	return axis
}

// FullSpectrum computes the spectrum over DefaultWindow.
func (a *Analyzer) FullSpectrum() (*Frame, error) {
	return a.Spectrum(a.DefaultWindow())
}

// Spectrum computes the one-sided amplitude spectrum of the samples in w.
// Times map to indices as floor(t * sampleRate) and are clamped to the
// signal. The raw transform is divided by the slice length and doubled, so a
// sinusoid of amplitude A peaks at roughly A.
func (a *Analyzer) Spectrum(w Window) (*Frame, error) {
	if math.IsNaN(w.Start) || math.IsNaN(w.End) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, w)
	}

	start := a.sampleIndex(w.Start)
	end := a.sampleIndex(w.End)
	if end-start < minSamples {
		return nil, fmt.Errorf("%w: window %.6fs-%.6fs covers samples [%d, %d)",
			ErrInsufficientSamples, w.Start, w.End, start, max(end, start))
	}

	slice, gain := a.windowFn.Apply(a.samples[start:end])
	n := len(slice)

	coeffs := a.fft.ComputeOneSided(slice)
	magnitudes := make([]float64, len(coeffs))
	scale := 2 / (float64(n) * gain)
	for k, c := range coeffs {
		magnitudes[k] = cmplx.Abs(c) * scale
	}

	a.logger.Debug("Computed spectrum", logging.Fields{
		"start_sample": start,
		"end_sample":   end,
		"bins":         len(magnitudes),
		"window_fn":    string(a.windowFn),
	})

	return &Frame{
		Frequencies: BinFrequencies(n, a.sampleRate),
		Magnitudes:  magnitudes,
	}, nil
}

func (a *Analyzer) sampleIndex(t float64) int {
	idx := math.Floor(t*float64(a.sampleRate) + indexEpsilon)
	if idx <= 0 {
		return 0
	}
	if idx >= float64(len(a.samples)) {
		return len(a.samples)
	}
	return int(idx)
}
