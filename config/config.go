// Package config holds the JSON configuration of the pitch detection
// pipeline and its defaults.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pitch/algorithms/windowing"
	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/transcode"
)

// SignalSource selects which derived signal is analysed
type SignalSource string

const (
	SourceMono SignalSource = "mono" // average of all channels
	SourceSum  SignalSource = "sum"  // (right + left) / 2, stereo only
	SourceDiff SignalSource = "diff" // right - left, stereo only
)

// DefaultMinFrequency drops DC and sub-audio bins from reports
const DefaultMinFrequency = 20.0 // Hz

type AnalysisConfig struct {
	Source SignalSource `json:"source"`

	// Analysis window in seconds. End 0 means up to the last sample.
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	WindowFunction string `json:"window_function"` // "rectangular", "hann", ...

	// Peak picking, relative to the frame maximum. Positive values act as 0.
	ThresholdDB float64 `json:"threshold_db"`

	// Report filters. MaxFrequency 0 means Nyquist, MaxPeaks 0 means all.
	MinFrequency float64 `json:"min_frequency"`
	MaxFrequency float64 `json:"max_frequency"`
	MaxPeaks     int     `json:"max_peaks"`

	// RefinePeaks names pitches from the parabolic-interpolated frequency
	// instead of the bin centre
	RefinePeaks bool `json:"refine_peaks"`

	RolloffPercent float64 `json:"rolloff_percent"`
}

// Config is the complete pipeline configuration
type Config struct {
	Analysis AnalysisConfig          `json:"analysis"`
	Tuning   tonal.Tuning            `json:"tuning"`
	Decoder  transcode.DecoderConfig `json:"decoder"`
	LogLevel string                  `json:"log_level"`
}

// DefaultAnalysisConfig returns sensible defaults for analysis
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Source:         SourceMono,
		Start:          0,
		End:            0,
		WindowFunction: string(windowing.Rectangular),
		ThresholdDB:    0,
		MinFrequency:   DefaultMinFrequency,
		MaxFrequency:   0,
		MaxPeaks:       0,
		RefinePeaks:    false,
		RolloffPercent: 0.85,
	}
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Analysis: DefaultAnalysisConfig(),
		Tuning:   tonal.DefaultTuning,
		Decoder:  *transcode.DefaultDecoderConfig(),
		LogLevel: logging.InfoLevel.String(),
	}
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if err := c.Tuning.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if err := c.Decoder.Validate(); err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
	return nil
}

// Validate checks ranges and enumerations
func (a *AnalysisConfig) Validate() error {
	switch a.Source {
	case SourceMono, SourceSum, SourceDiff:
	default:
		return fmt.Errorf("unknown signal source: %q", a.Source)
	}

	for name, v := range map[string]float64{
		"start":           a.Start,
		"end":             a.End,
		"threshold_db":    a.ThresholdDB,
		"min_frequency":   a.MinFrequency,
		"max_frequency":   a.MaxFrequency,
		"rolloff_percent": a.RolloffPercent,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite", name)
		}
	}

	if a.Start < 0 {
		return fmt.Errorf("start must not be negative: %v", a.Start)
	}
	if a.End != 0 && a.End <= a.Start {
		return fmt.Errorf("end (%v) must be after start (%v)", a.End, a.Start)
	}
	if a.MinFrequency < 0 {
		return fmt.Errorf("min_frequency must not be negative: %v", a.MinFrequency)
	}
	if a.MaxFrequency != 0 && a.MaxFrequency <= a.MinFrequency {
		return fmt.Errorf("max_frequency (%v) must exceed min_frequency (%v)", a.MaxFrequency, a.MinFrequency)
	}
	if a.MaxPeaks < 0 {
		return fmt.Errorf("max_peaks must not be negative: %d", a.MaxPeaks)
	}
	if a.RolloffPercent < 0 || a.RolloffPercent > 1 {
		return fmt.Errorf("rolloff_percent must be within [0, 1]: %v", a.RolloffPercent)
	}
	if _, err := windowing.Parse(a.WindowFunction); err != nil {
		return err
	}
	return nil
}

// LoadFile reads a JSON configuration. Fields missing from the file keep
// their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}
