// Package waveform holds decoded multi-channel sample data and reduces it to
// mono and derived (sum/difference) signals ready for spectral analysis.
package waveform

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrUnsupportedOperation is returned when a stereo-only operation is
	// invoked on a mono signal.
	ErrUnsupportedOperation = errors.New("operation not supported on mono signal")

	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidLayout     = errors.New("invalid channel layout")
)

// Sample is the set of sample representations a waveform can be built from.
// Values are converted to float64 without rescaling, so 16-bit PCM stays in
// the ±32768 range and normalized float input stays in [-1, 1].
type Sample interface {
	~int8 | ~int16 | ~int32 | ~int | ~float32 | ~float64
}

// EndOfSignal is the Window.End sentinel meaning "up to the last sample".
const EndOfSignal = -1

// Window selects the sample range [Start, End) of a waveform.
type Window struct {
	Start int
	End   int
}

// Full selects the whole signal.
var Full = Window{Start: 0, End: EndOfSignal}

// IsFull reports whether w selects the whole signal.
func (w Window) IsFull() bool {
	return w.Start == 0 && w.End == EndOfSignal
}

// Waveform is decoded audio. Samples are stored channel-major so that single
// channel access does not copy. A Waveform is immutable once built; windows
// are taken with View.
type Waveform struct {
	sampleRate int
	mono       bool
	channels   [][]float64
	length     int
}

// FromMono builds a single-channel waveform. float64 input is used as-is
// without copying.
func FromMono[T Sample](sampleRate int, samples []T) (*Waveform, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	data, ok := any(samples).([]float64)
	if !ok {
		data = make([]float64, len(samples))
		for i, s := range samples {
			data[i] = float64(s)
		}
	}

	return &Waveform{
		sampleRate: sampleRate,
		mono:       true,
		channels:   [][]float64{data},
		length:     len(data),
	}, nil
}

// FromFrames builds a multi-channel waveform from time x channel frames. Every
// frame must have the same, non-zero, number of channels.
func FromFrames[T Sample](sampleRate int, frames [][]T) (*Waveform, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrInvalidLayout)
	}

	numCh := len(frames[0])
	if numCh == 0 {
		return nil, fmt.Errorf("%w: frame has no channels", ErrInvalidLayout)
	}

	channels := make([][]float64, numCh)
	for ch := range channels {
		channels[ch] = make([]float64, len(frames))
	}

	for t, frame := range frames {
		if len(frame) != numCh {
			return nil, fmt.Errorf("%w: frame %d has %d channels, expected %d",
				ErrInvalidLayout, t, len(frame), numCh)
		}
		for ch, s := range frame {
			channels[ch][t] = float64(s)
		}
	}

	return &Waveform{
		sampleRate: sampleRate,
		channels:   channels,
		length:     len(frames),
	}, nil
}

// FromInterleaved builds a waveform from interleaved samples as produced by
// WAV and raw PCM decoders. A channel count of 1 yields a mono waveform.
// Trailing samples that do not fill a whole frame are dropped.
func FromInterleaved[T Sample](sampleRate int, data []T, numChannels int) (*Waveform, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if numChannels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidLayout, numChannels)
	}
	if numChannels == 1 {
		return FromMono(sampleRate, data)
	}

	length := len(data) / numChannels
	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, length)
	}

	for t := 0; t < length; t++ {
		base := t * numChannels
		for ch := 0; ch < numChannels; ch++ {
			channels[ch][t] = float64(data[base+ch])
		}
	}

	return &Waveform{
		sampleRate: sampleRate,
		channels:   channels,
		length:     length,
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (w *Waveform) SampleRate() int {
	return w.sampleRate
}

// IsMono reports whether the signal has a single channel dimension.
func (w *Waveform) IsMono() bool {
	return w.mono
}

// ChannelCount is 1 for mono signals and the frame width otherwise.
func (w *Waveform) ChannelCount() int {
	if w.mono {
		return 1
	}
	return len(w.channels)
}

// Len returns the number of samples per channel.
func (w *Waveform) Len() int {
	return w.length
}

// Duration returns the signal length in time.
func (w *Waveform) Duration() time.Duration {
	return time.Duration(w.length) * time.Second / time.Duration(w.sampleRate)
}

// View returns the part of the waveform selected by win. Views share storage
// with the receiver. The full window returns the receiver itself. Bounds are
// clamped to the signal; an inverted window yields an empty view.
func (w *Waveform) View(win Window) *Waveform {
	if win.IsFull() {
		return w
	}

	start, end := win.Start, win.End
	if end < 0 || end > w.length {
		end = w.length
	}
	start = max(start, 0)
	start = min(start, end)

	channels := make([][]float64, len(w.channels))
	for ch, data := range w.channels {
		channels[ch] = data[start:end:end]
	}

	return &Waveform{
		sampleRate: w.sampleRate,
		mono:       w.mono,
		channels:   channels,
		length:     end - start,
	}
}

// Channel returns the samples of a single channel. For mono signals only
// channel 0 exists. The returned slice aliases the waveform's storage.
func (w *Waveform) Channel(ch Channel) ([]float64, bool) {
	if ch < 0 || int(ch) > w.ChannelCount()-1 {
		return nil, false
	}
	return w.channels[ch], true
}

// ToMono returns the mono signal. Mono input is returned as-is; multi-channel
// input is averaged sample-wise across all channels.
func (w *Waveform) ToMono() []float64 {
	if w.mono {
		return w.channels[0]
	}

	mono := make([]float64, w.length)
	for _, data := range w.channels {
		floats.Add(mono, data)
	}
	floats.Scale(1/float64(len(w.channels)), mono)

	return mono
}

// SelectChannels returns the requested channels keyed by position. Positions
// beyond the signal's channel count are left out.
func (w *Waveform) SelectChannels(chs ...Channel) map[Channel][]float64 {
	selected := make(map[Channel][]float64, len(chs))
	for _, ch := range chs {
		if data, ok := w.Channel(ch); ok {
			selected[ch] = data
		}
	}
	return selected
}

// SumChannelSets sums each set's channels sample-wise, one signal per set.
// Channels are added in set order and a repeated channel counts once. A set
// that shares no channel with the signal yields all zeros.
func (w *Waveform) SumChannelSets(sets ...ChannelSet) [][]float64 {
	sums := make([][]float64, len(sets))
	for i, set := range sets {
		sum := make([]float64, w.length)
		for j, ch := range set {
			if slices.Contains(set[:j], ch) {
				continue
			}
			if data, ok := w.Channel(ch); ok {
				floats.Add(sum, data)
			}
		}
		sums[i] = sum
	}
	return sums
}

// StereoDiff returns the side signal: right bus minus left bus.
func (w *Waveform) StereoDiff() ([]float64, error) {
	left, right, err := w.stereoBuses()
	if err != nil {
		return nil, fmt.Errorf("stereo diff: %w", err)
	}

	floats.Sub(right, left)
	return right, nil
}

// StereoSum returns the mid signal: the mean of right and left buses.
func (w *Waveform) StereoSum() ([]float64, error) {
	left, right, err := w.stereoBuses()
	if err != nil {
		return nil, fmt.Errorf("stereo sum: %w", err)
	}

	floats.Add(right, left)
	floats.Scale(0.5, right)
	return right, nil
}

func (w *Waveform) stereoBuses() (left, right []float64, err error) {
	if w.mono {
		return nil, nil, ErrUnsupportedOperation
	}
	buses := w.SumChannelSets(ChannelsLeft, ChannelsRight)
	return buses[0], buses[1], nil
}
