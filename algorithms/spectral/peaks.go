package spectral

import (
	"math"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// DefaultThresholdDB keeps only bins at full scale, i.e. the frame maximum.
const DefaultThresholdDB = 0.0

// Peak is a spectral bin that is a strict local maximum above the threshold
type Peak struct {
	Frequency float64 // Bin frequency in Hz
	Magnitude float64 // Bin amplitude
	BinIndex  int     // Index into the frame
}

// LinearThreshold converts a threshold relative to the frame maximum into an
// absolute magnitude. Positive and NaN thresholds are treated as 0 dB.
func LinearThreshold(magnitudes []float64, thresholdDB float64) float64 {
	if math.IsNaN(thresholdDB) || thresholdDB > 0 {
		thresholdDB = 0
	}
	return common.MaxAbs(magnitudes) * common.DBToAmplitude(thresholdDB)
}

// FindPeakBins returns the indices of bins that are strictly greater than
// their immediate neighbours and at least the linear threshold. The first and
// last bins only compare against their single neighbour; frames with fewer
// than two bins have no peaks. A constant (including all-zero) spectrum has
// no strict maxima and yields no peaks. Indices are ascending.
func FindPeakBins(magnitudes []float64, thresholdDB float64) []int {
	n := len(magnitudes)
	if n < 2 {
		return []int{}
	}

	linThresh := LinearThreshold(magnitudes, thresholdDB)

	bins := []int{}
	for i, mag := range magnitudes {
		if mag < linThresh {
			continue
		}
		if i > 0 && mag <= magnitudes[i-1] {
			continue
		}
		if i < n-1 && mag <= magnitudes[i+1] {
			continue
		}
		bins = append(bins, i)
	}

	return bins
}

// DetectPeaks returns the peaks of frame in ascending frequency order
func DetectPeaks(frame *Frame, thresholdDB float64) []Peak {
	if frame == nil {
		return []Peak{}
	}

	bins := FindPeakBins(frame.Magnitudes, thresholdDB)
	peaks := make([]Peak, len(bins))
	for i, bin := range bins {
		peaks[i] = Peak{
			Frequency: frame.Frequencies[bin],
			Magnitude: frame.Magnitudes[bin],
			BinIndex:  bin,
		}
	}

	return peaks
}

// FindPeaks returns the peak frequencies of frame in ascending order
func FindPeaks(frame *Frame, thresholdDB float64) []float64 {
	peaks := DetectPeaks(frame, thresholdDB)
	freqs := make([]float64, len(peaks))
	for i, p := range peaks {
		freqs[i] = p.Frequency
	}
	return freqs
}

// RefineFrequency estimates the true frequency of a peak with parabolic
// interpolation over its neighbouring bins. Edge bins and flat tops return
// the bin frequency unchanged.
func RefineFrequency(frame *Frame, peak Peak) float64 {
	i := peak.BinIndex
	if frame == nil || i <= 0 || i >= frame.Len()-1 {
		return peak.Frequency
	}

	y1 := frame.Magnitudes[i-1]
	y2 := frame.Magnitudes[i]
	y3 := frame.Magnitudes[i+1]

	denom := 2.0 * (2.0*y2 - y1 - y3)
	if math.Abs(denom) < 1e-10 {
		return peak.Frequency
	}

	offset := (y3 - y1) / denom
	return (float64(i) + offset) * frame.Resolution()
}
