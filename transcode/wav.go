package transcode

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/waveform"
)

// WAVDecoder reads PCM WAV files with go-audio/wav. Channel layout is kept;
// sample values stay in their integer range unless normalize is set.
type WAVDecoder struct {
	normalize bool
}

// NewWAVDecoder creates a WAV decoder
func NewWAVDecoder(normalize bool) *WAVDecoder {
	return &WAVDecoder{normalize: normalize}
}

// DecodeFile decodes a WAV file from disk
func (d *WAVDecoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	return d.DecodeReader(f, filename)
}

// DecodeReader decodes WAV data from r; source is only used for reporting
func (d *WAVDecoder) DecodeReader(r io.ReadSeeker, source string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "wav_decoder",
		"function":  "DecodeReader",
		"source":    source,
	})

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file %s", ErrUnsupportedFormat, source)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("error reading WAV data: %w", err)
	}

	sampleRate := int(dec.SampleRate)
	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)

	if len(buf.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSamples, source)
	}

	divisor, err := pcmDivisor(bitDepth)
	if err != nil {
		return nil, err
	}

	samples := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		v := float64(s)
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		if d.normalize {
			v /= divisor
		}
		samples[i] = v
	}

	w, err := waveform.FromInterleaved(sampleRate, samples, channels)
	if err != nil {
		return nil, fmt.Errorf("failed to build waveform from %s: %w", source, err)
	}

	logger.Debug("WAV decode completed", logging.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
		"bit_depth":   bitDepth,
		"samples":     w.Len(),
	})

	return &AudioData{
		Waveform: w,
		Source:   source,
		Format:   "wav",
		Codec:    "pcm",
		BitDepth: bitDepth,
		Duration: w.Duration(),
	}, nil
}
