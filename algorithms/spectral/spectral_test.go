package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-pitch/algorithms/windowing"
	"github.com/RyanBlaney/sonido-pitch/logging"
)

func sine(freq, amplitude float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func newTestAnalyzer(t *testing.T, samples []float64, rate int, opts ...Option) *Analyzer {
	t.Helper()
	opts = append([]Option{WithLogger(&logging.NoOpLogger{})}, opts...)
	a, err := NewAnalyzer(samples, rate, opts...)
	require.NoError(t, err)
	return a
}

func TestNewAnalyzer_RejectsBadSampleRate(t *testing.T) {
	_, err := NewAnalyzer([]float64{1, 2}, 0)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
}

func TestBinFrequencies(t *testing.T) {
	assert.Equal(t, []float64{0, 2, 4}, BinFrequencies(4, 8))
	assert.Len(t, BinFrequencies(7, 8), 4)
	assert.Empty(t, BinFrequencies(0, 8))
}

func TestFFT_ComputeOneSided(t *testing.T) {
	f := NewFFT()

	assert.Empty(t, f.ComputeOneSided(nil))

	coeffs := f.ComputeOneSided([]float64{1, 1, 1, 1})
	require.Len(t, coeffs, 3)
	assert.InDelta(t, 4.0, real(coeffs[0]), 1e-12)
	assert.InDelta(t, 0.0, math.Hypot(real(coeffs[1]), imag(coeffs[1])), 1e-12)
}

func TestSpectrum_PureSineAmplitude(t *testing.T) {
	const rate = 8000
	a := newTestAnalyzer(t, sine(440, 0.5, rate, rate), rate)

	frame, err := a.Spectrum(Window{Start: 0, End: 1})
	require.NoError(t, err)

	assert.Equal(t, rate/2+1, frame.Len())
	assert.InDelta(t, 1.0, frame.Resolution(), 1e-12)
	assert.InDelta(t, 440.0, frame.Frequencies[440], 1e-9)
	assert.InDelta(t, 0.5, frame.Magnitudes[440], 1e-6)

	assert.Equal(t, []float64{440}, FindPeaks(frame, DefaultThresholdDB))
}

func TestSpectrum_PeaksAreGainInvariant(t *testing.T) {
	const rate = 4000
	normalized := sine(250, 0.3, rate, rate)
	for i, s := range sine(1000, 0.2, rate, rate) {
		normalized[i] += s
	}
	pcm := make([]float64, len(normalized))
	for i, s := range normalized {
		pcm[i] = math.Round(s * 32767)
	}

	win := Window{Start: 0, End: 1}
	floatFrame, err := newTestAnalyzer(t, normalized, rate).Spectrum(win)
	require.NoError(t, err)
	pcmFrame, err := newTestAnalyzer(t, pcm, rate).Spectrum(win)
	require.NoError(t, err)

	assert.Equal(t, []float64{250, 1000}, FindPeaks(floatFrame, -6))
	assert.Equal(t, FindPeaks(floatFrame, -6), FindPeaks(pcmFrame, -6))
}

func TestSpectrum_HannWindowKeepsAmplitude(t *testing.T) {
	const rate = 8000
	a := newTestAnalyzer(t, sine(440, 0.5, rate, rate), rate, WithWindowFunction(windowing.Hann))

	frame, err := a.Spectrum(Window{Start: 0, End: 1})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, frame.Magnitudes[440], 1e-3)
	assert.Equal(t, []float64{440}, FindPeaks(frame, DefaultThresholdDB))
}

func TestSpectrum_SubWindow(t *testing.T) {
	const rate = 1000
	a := newTestAnalyzer(t, sine(100, 1, rate, 2*rate), rate)

	frame, err := a.Spectrum(Window{Start: 0.5, End: 0.6})
	require.NoError(t, err)

	// 100 samples -> 51 bins at 10 Hz spacing
	assert.Equal(t, 51, frame.Len())
	assert.InDelta(t, 10.0, frame.Resolution(), 1e-12)
	assert.Equal(t, []float64{100}, FindPeaks(frame, DefaultThresholdDB))
}

func TestDefaultWindow(t *testing.T) {
	a := newTestAnalyzer(t, make([]float64, 8), 8)

	assert.Equal(t, Window{Start: 0, End: 7.0 / 8.0}, a.DefaultWindow())

	// the default window stops before the last sample
	frame, err := a.FullSpectrum()
	require.NoError(t, err)
	assert.Equal(t, 4, frame.Len())
	assert.InDelta(t, 8.0/7.0, frame.Resolution(), 1e-12)

	assert.Equal(t, Window{}, newTestAnalyzer(t, nil, 8).DefaultWindow())
}

func TestSpectrum_InsufficientSamples(t *testing.T) {
	const rate = 100
	a := newTestAnalyzer(t, make([]float64, 50), rate)

	tests := []struct {
		name string
		win  Window
	}{
		{"empty", Window{Start: 0.2, End: 0.2}},
		{"single sample", Window{Start: 0.2, End: 0.21}},
		{"inverted", Window{Start: 0.4, End: 0.1}},
		{"past the end", Window{Start: 2, End: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Spectrum(tt.win)
			assert.ErrorIs(t, err, ErrInsufficientSamples)
		})
	}

	_, err := newTestAnalyzer(t, nil, rate).FullSpectrum()
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	_, err = newTestAnalyzer(t, []float64{1}, rate).FullSpectrum()
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestSpectrum_NaNWindow(t *testing.T) {
	a := newTestAnalyzer(t, make([]float64, 10), 10)

	_, err := a.Spectrum(Window{Start: math.NaN(), End: 1})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestTimeAxis(t *testing.T) {
	a := newTestAnalyzer(t, make([]float64, 3), 2)

	assert.Equal(t, []float64{0, 0.5, 1}, a.TimeAxis())
}
