package transcode

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/waveform"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNoSamples         = errors.New("no audio samples decoded")
)

// AudioData is a decoded file: the waveform plus what is known about its
// source encoding
type AudioData struct {
	Waveform *waveform.Waveform `json:"-"`
	Source   string             `json:"source"`
	Format   string             `json:"format"`
	Codec    string             `json:"codec,omitempty"`
	BitDepth int                `json:"bit_depth,omitempty"`
	Duration time.Duration      `json:"duration"`
}

// Decoder turns an audio file into a waveform
type Decoder interface {
	DecodeFile(ctx context.Context, filename string) (*AudioData, error)
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	// Normalize rescales integer PCM to [-1, 1]. Off by default so that raw
	// PCM values reach the analysis unchanged.
	Normalize bool `json:"normalize"`

	// ForceFFmpeg routes WAV and MP3 files through ffmpeg as well
	ForceFFmpeg bool `json:"force_ffmpeg"`

	MaxDuration time.Duration `json:"max_duration"` // 0 means no limit (ffmpeg only)
	FFmpegPath  string        `json:"ffmpeg_path"`  // Path to ffmpeg binary
	FFprobePath string        `json:"ffprobe_path"` // Path to ffprobe binary
	Timeout     time.Duration `json:"timeout"`      // Timeout for ffmpeg operations
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		Normalize:   false,
		ForceFFmpeg: false,
		MaxDuration: 0,
		FFmpegPath:  "ffmpeg",  // Assume in PATH
		FFprobePath: "ffprobe", // Assume in PATH
		Timeout:     30 * time.Second,
	}
}

// Validate validates the decoder configuration
func (c *DecoderConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %v", c.Timeout)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("max duration must not be negative: %v", c.MaxDuration)
	}
	if c.FFmpegPath == "" || c.FFprobePath == "" {
		return fmt.Errorf("ffmpeg and ffprobe paths must be set")
	}
	return nil
}

// AutoDecoder decodes WAV and MP3 files natively and hands everything else
// to ffmpeg
type AutoDecoder struct {
	config *DecoderConfig
	wav    *WAVDecoder
	mp3    *MP3Decoder
	ffmpeg *FFmpegDecoder
}

// NewDecoder creates a decoder for the given configuration; nil selects the
// defaults
func NewDecoder(config *DecoderConfig) *AutoDecoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &AutoDecoder{
		config: config,
		wav:    NewWAVDecoder(config.Normalize),
		mp3:    NewMP3Decoder(config.Normalize),
		ffmpeg: NewFFmpegDecoder(config),
	}
}

// DecodeFile decodes filename with the decoder matching its extension
func (d *AutoDecoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	if !d.config.ForceFFmpeg {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".wav", ".wave":
			logger.Debug("Decoding with native WAV reader")
			return d.wav.DecodeFile(ctx, filename)
		case ".mp3":
			logger.Debug("Decoding with native MP3 reader")
			return d.mp3.DecodeFile(ctx, filename)
		}
	}

	logger.Debug("Decoding with ffmpeg")
	return d.ffmpeg.DecodeFile(ctx, filename)
}

// pcmDivisor returns the full-scale value for signed PCM of the given depth
func pcmDivisor(bitDepth int) (float64, error) {
	switch bitDepth {
	case 8:
		return 128.0, nil
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, fmt.Errorf("%w: bit depth %d", ErrUnsupportedFormat, bitDepth)
	}
}
