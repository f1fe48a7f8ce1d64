package transcode

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"github.com/RyanBlaney/sonido-pitch/logging"
)

// mp3Channels is go-mp3's output layout; mono streams are duplicated onto
// both channels
const mp3Channels = 2

// MP3Decoder decodes MP3 files natively with go-mp3. Output is always 16-bit
// stereo at the stream's sample rate.
type MP3Decoder struct {
	normalize bool
}

// NewMP3Decoder creates an MP3 decoder
func NewMP3Decoder(normalize bool) *MP3Decoder {
	return &MP3Decoder{normalize: normalize}
}

// DecodeFile decodes an MP3 file from disk
func (d *MP3Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer f.Close()

	return d.DecodeReader(f, filename)
}

// DecodeReader decodes MP3 data from r
func (d *MP3Decoder) DecodeReader(r io.Reader, source string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "mp3_decoder",
		"function":  "DecodeReader",
		"source":    source,
	})

	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid MP3 stream %s: %v", ErrUnsupportedFormat, source, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("error reading MP3 data: %w", err)
	}

	samples := bytesToInt16(raw)
	if len(samples) < mp3Channels {
		return nil, fmt.Errorf("%w: %s", ErrNoSamples, source)
	}

	w, err := pcm16Waveform(dec.SampleRate(), samples, mp3Channels, d.normalize)
	if err != nil {
		return nil, fmt.Errorf("failed to build waveform from %s: %w", source, err)
	}

	logger.Debug("MP3 decode completed", logging.Fields{
		"sample_rate": dec.SampleRate(),
		"samples":     w.Len(),
	})

	return &AudioData{
		Waveform: w,
		Source:   source,
		Format:   "mp3",
		Codec:    "mp3",
		BitDepth: 16,
		Duration: w.Duration(),
	}, nil
}
