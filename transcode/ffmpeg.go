package transcode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/waveform"
)

// maxChannels is the widest layout the channel unifier knows (7.1)
const maxChannels = 8

// AudioMetadata is what ffprobe reports about the first audio stream
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate"`
	Format     string  `json:"format"`
}

// CommandRunner runs an external command and returns its stdout
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	output, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, strings.TrimSpace(string(exitError.Stderr)))
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return output, nil
}

// FFmpegDecoder decodes any format ffmpeg understands. Output is 16-bit
// PCM at the source sample rate with the source channel layout.
type FFmpegDecoder struct {
	config *DecoderConfig
	run    CommandRunner
}

// NewFFmpegDecoder creates an ffmpeg backed decoder
func NewFFmpegDecoder(config *DecoderConfig) *FFmpegDecoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &FFmpegDecoder{config: config, run: execRunner}
}

// WithRunner replaces the command runner, used to stub ffmpeg
func (d *FFmpegDecoder) WithRunner(run CommandRunner) *FFmpegDecoder {
	d.run = run
	return d
}

// DecodeFile probes and decodes an audio file
func (d *FFmpegDecoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	metadata, err := d.Probe(ctx, filename)
	if err != nil {
		logger.Error(err, "Failed to probe audio file")
		return nil, err
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
	})

	args := append([]string{"-i", filename}, d.buildFFmpegArgs(metadata)...)
	args = append(args, "pipe:1")

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	output, err := d.run(ctx, d.config.FFmpegPath, args...)
	if err != nil {
		logger.Error(err, "Ffmpeg decode failed")
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	return d.processFFmpegOutput(output, metadata, filename)
}

// Probe uses ffprobe to read the first audio stream's parameters
func (d *FFmpegDecoder) Probe(ctx context.Context, filename string) (*AudioMetadata, error) {
	args := []string{
		"-v", "quiet", // Suppress verbose output
		"-print_format", "json", // JSON output
		"-show_streams",          // Show stream info
		"-select_streams", "a:0", // First audio stream only
		filename,
	}

	output, err := d.run(ctx, d.config.FFprobePath, args...)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseFFprobeOutput(output)
}

// parseFFprobeOutput parses ffprobe JSON to extract audio metadata
func parseFFprobeOutput(jsonData []byte) (*AudioMetadata, error) {
	var probe struct {
		Streams []struct {
			CodecType     string `json:"codec_type"`
			CodecName     string `json:"codec_name"`
			SampleRate    string `json:"sample_rate"`
			Channels      int    `json:"channels"`
			Duration      string `json:"duration"`
			BitRate       string `json:"bit_rate"`
			CodecLongName string `json:"codec_long_name"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("%w: no audio streams found", ErrUnsupportedFormat)
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("%w: stream is not audio type: %s", ErrUnsupportedFormat, stream.CodecType)
	}

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %q", ErrUnsupportedFormat, stream.SampleRate)
	}

	if stream.Channels <= 0 || stream.Channels > maxChannels {
		return nil, fmt.Errorf("%w: invalid channel count: %d", ErrUnsupportedFormat, stream.Channels)
	}

	duration, err := strconv.ParseFloat(stream.Duration, 64)
	if err != nil {
		duration = 0
	}

	bitrate, err := strconv.Atoi(stream.BitRate)
	if err != nil {
		bitrate = 0
	}

	return &AudioMetadata{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
		Duration:   duration,
		Bitrate:    bitrate,
		Format:     stream.CodecLongName,
	}, nil
}

// buildFFmpegArgs keeps the source rate and layout and asks for raw s16le
func (d *FFmpegDecoder) buildFFmpegArgs(metadata *AudioMetadata) []string {
	args := []string{
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(metadata.Channels),
		"-ar", strconv.Itoa(metadata.SampleRate),
	}

	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}

	// Suppress ffmpeg output
	return append(args, "-v", "error")
}

// processFFmpegOutput turns interleaved s16le bytes into a waveform
func (d *FFmpegDecoder) processFFmpegOutput(output []byte, metadata *AudioMetadata, source string) (*AudioData, error) {
	samples := bytesToInt16(output)
	if len(samples) < metadata.Channels {
		return nil, fmt.Errorf("%w: %s", ErrNoSamples, source)
	}

	w, err := pcm16Waveform(metadata.SampleRate, samples, metadata.Channels, d.config.Normalize)
	if err != nil {
		return nil, fmt.Errorf("failed to build waveform from %s: %w", source, err)
	}

	return &AudioData{
		Waveform: w,
		Source:   source,
		Format:   metadata.Format,
		Codec:    metadata.Codec,
		BitDepth: 16,
		Duration: w.Duration(),
	}, nil
}

// pcm16Waveform builds a waveform from interleaved 16-bit samples, optionally
// rescaled to [-1, 1]
func pcm16Waveform(sampleRate int, samples []int16, channels int, normalize bool) (*waveform.Waveform, error) {
	if !normalize {
		return waveform.FromInterleaved(sampleRate, samples, channels)
	}

	scaled := make([]float64, len(samples))
	for i, s := range samples {
		scaled[i] = float64(s) / 32768.0
	}
	return waveform.FromInterleaved(sampleRate, scaled, channels)
}

// bytesToInt16 converts little-endian 16-bit PCM, dropping a trailing odd byte
func bytesToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}
	return samples
}
