package waveform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stereoFixture(t *testing.T) *Waveform {
	t.Helper()
	w, err := FromFrames(44100, [][]int16{{1, 3}, {2, 4}, {5, 1}})
	require.NoError(t, err)
	return w
}

func TestFromMono_NoCopyForFloat64(t *testing.T) {
	samples := []float64{0.1, -0.2, 0.3}

	w, err := FromMono(8000, samples)
	require.NoError(t, err)

	mono := w.ToMono()
	assert.True(t, w.IsMono())
	assert.Equal(t, 1, w.ChannelCount())
	assert.Equal(t, samples, mono)
	assert.Same(t, &samples[0], &mono[0])
}

func TestFromMono_ConvertsIntegerSamplesWithoutScaling(t *testing.T) {
	w, err := FromMono(8000, []int16{-32768, 0, 32767})
	require.NoError(t, err)

	assert.Equal(t, []float64{-32768, 0, 32767}, w.ToMono())
}

func TestConstructors_RejectBadInput(t *testing.T) {
	_, err := FromMono(0, []float64{1})
	assert.ErrorIs(t, err, ErrInvalidSampleRate)

	_, err = FromFrames[float64](44100, nil)
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = FromFrames(44100, [][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = FromInterleaved(44100, []int16{1, 2}, 0)
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestFromInterleaved(t *testing.T) {
	w, err := FromInterleaved(48000, []int16{1, 3, 2, 4, 5, 1, 9}, 2)
	require.NoError(t, err)

	assert.False(t, w.IsMono())
	assert.Equal(t, 2, w.ChannelCount())
	assert.Equal(t, 3, w.Len())

	left, ok := w.Channel(FrontLeft)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 5}, left)

	mono, err := FromInterleaved(48000, []float32{0.5, 0.25}, 1)
	require.NoError(t, err)
	assert.True(t, mono.IsMono())
}

func TestToMono_AveragesChannels(t *testing.T) {
	w := stereoFixture(t)

	assert.Equal(t, []float64{2, 3, 3}, w.ToMono())
}

func TestStereoSumAndDiff(t *testing.T) {
	w := stereoFixture(t)

	sum, err := w.StereoSum()
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 3}, sum)

	diff, err := w.StereoDiff()
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, -4}, diff)

	// derived signals must not write through to the channel storage
	right, _ := w.Channel(FrontRight)
	assert.Equal(t, []float64{3, 4, 1}, right)
}

func TestStereoOperations_FailOnMono(t *testing.T) {
	w, err := FromMono(44100, []float64{1, 2, 3})
	require.NoError(t, err)

	_, err = w.StereoDiff()
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	_, err = w.StereoSum()
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestSelectChannels_IgnoresOutOfRange(t *testing.T) {
	w := stereoFixture(t)

	selected := w.SelectChannels(FrontLeft, Center, AltRearRight, Channel(-1))

	require.Len(t, selected, 1)
	assert.Equal(t, []float64{1, 2, 5}, selected[FrontLeft])
}

func TestSumChannelSets(t *testing.T) {
	// 5.1 layout: FL FR C LFE RL RR
	frame := []float64{1, 2, 10, 20, 100, 200}
	w, err := FromFrames(48000, [][]float64{frame, frame})
	require.NoError(t, err)

	sums := w.SumChannelSets(ChannelsLeft, ChannelsRight, ChannelsCenter, ChannelSet{AltRearLeft})
	require.Len(t, sums, 4)

	assert.Equal(t, []float64{101, 101}, sums[0])
	assert.Equal(t, []float64{202, 202}, sums[1])
	assert.Equal(t, []float64{30, 30}, sums[2])
	assert.Equal(t, []float64{0, 0}, sums[3], "no intersection gives a zero signal")
}

func TestSumChannelSets_Deterministic(t *testing.T) {
	// 7.1 layout with left-like channels 0.1, 0.2 and 0.3
	frame := []float64{0.1, 9, 9, 9, 0.2, 9, 0.3, 9}
	w, err := FromFrames(48000, [][]float64{frame})
	require.NoError(t, err)

	fl, rl, arl := frame[FrontLeft], frame[RearLeft], frame[AltRearLeft]

	want := w.SumChannelSets(ChannelsLeft)[0][0]
	assert.Equal(t, math.Float64bits((fl+rl)+arl), math.Float64bits(want))
	for range 500 {
		got := w.SumChannelSets(ChannelsLeft)[0][0]
		require.Equal(t, math.Float64bits(want), math.Float64bits(got))
	}

	dup := w.SumChannelSets(ChannelSet{FrontLeft, FrontLeft, RearLeft})
	assert.Equal(t, []float64{fl + rl}, dup[0], "repeated channels count once")
}

func TestStereoDiff_SurroundUsesBuses(t *testing.T) {
	// 7.1 layout, every left-like channel 1, every right-like channel 2
	frame := []int16{1, 2, 50, 50, 1, 2, 1, 2}
	w, err := FromFrames(48000, [][]int16{frame})
	require.NoError(t, err)

	diff, err := w.StereoDiff()
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, diff)

	sum, err := w.StereoSum()
	require.NoError(t, err)
	assert.Equal(t, []float64{4.5}, sum)
}

func TestView(t *testing.T) {
	w := stereoFixture(t)

	assert.Same(t, w, w.View(Full))

	v := w.View(Window{Start: 1, End: EndOfSignal})
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, []float64{3, 3}, v.ToMono())

	v = w.View(Window{Start: 0, End: 2})
	diff, err := v.StereoDiff()
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, diff)

	assert.Equal(t, 0, w.View(Window{Start: 2, End: 1}).Len())
	assert.Equal(t, 3, w.View(Window{Start: -5, End: 99}).Len())
}

func TestView_MonoWindowAliasesStorage(t *testing.T) {
	samples := []float64{1, 2, 3, 4}
	w, err := FromMono(4, samples)
	require.NoError(t, err)

	mono := w.View(Window{Start: 1, End: 3}).ToMono()
	assert.Equal(t, []float64{2, 3}, mono)
	assert.Same(t, &samples[1], &mono[0])
}

func TestDuration(t *testing.T) {
	w, err := FromMono(4, make([]float64, 10))
	require.NoError(t, err)

	assert.Equal(t, "2.5s", w.Duration().String())
}

func TestChannelString(t *testing.T) {
	assert.Equal(t, "front_left", FrontLeft.String())
	assert.Equal(t, "alt_rear_right", AltRearRight.String())
	assert.Equal(t, "Channel(9)", Channel(9).String())
	assert.True(t, ChannelsRear.Contains(AltRearLeft))
	assert.False(t, ChannelsFront.Contains(Center))
}

func TestDerivedSignals(t *testing.T) {
	assert.Equal(t, []float64{1, -3, 4}, Diff([]float64{1, 2, -1, 3}))
	assert.Empty(t, Diff([]float64{1}))

	assert.Equal(t, []float64{0.5, -1, 0.25}, Normalize([]float64{2, -4, 1}))
	assert.Equal(t, []float64{0, 0}, Normalize([]float64{0, 0}))

	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75}, TimeAxis(4, 4), 1e-12)
	assert.Equal(t, []float64{0}, TimeAxis(1, 4))
	assert.Empty(t, TimeAxis(0, 4))
}
