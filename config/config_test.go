package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, SourceMono, cfg.Analysis.Source)
	assert.Equal(t, DefaultMinFrequency, cfg.Analysis.MinFrequency)
	assert.Equal(t, tonal.DefaultTuning, cfg.Tuning)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestAnalysisConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*AnalysisConfig)
	}{
		{"unknown source", func(a *AnalysisConfig) { a.Source = "left" }},
		{"negative start", func(a *AnalysisConfig) { a.Start = -1 }},
		{"end before start", func(a *AnalysisConfig) { a.Start = 2; a.End = 1 }},
		{"negative min frequency", func(a *AnalysisConfig) { a.MinFrequency = -5 }},
		{"max below min", func(a *AnalysisConfig) { a.MinFrequency = 100; a.MaxFrequency = 50 }},
		{"negative max peaks", func(a *AnalysisConfig) { a.MaxPeaks = -1 }},
		{"rolloff out of range", func(a *AnalysisConfig) { a.RolloffPercent = 1.5 }},
		{"unknown window", func(a *AnalysisConfig) { a.WindowFunction = "kaiser" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := DefaultAnalysisConfig()
			tt.modify(&a)
			assert.Error(t, a.Validate())
		})
	}
}

func TestLoadFile_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pitch.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"analysis": {"source": "diff", "threshold_db": -12, "window_function": "hann"},
		"tuning": {"reference_pitch_hz": 442, "reference_note_number": 57},
		"log_level": "debug"
	}`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, SourceDiff, cfg.Analysis.Source)
	assert.Equal(t, -12.0, cfg.Analysis.ThresholdDB)
	assert.Equal(t, "hann", cfg.Analysis.WindowFunction)
	assert.Equal(t, DefaultMinFrequency, cfg.Analysis.MinFrequency, "unset fields keep defaults")
	assert.Equal(t, 442.0, cfg.Tuning.ReferencePitchHz)
	assert.Equal(t, "ffmpeg", cfg.Decoder.FFmpegPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"analysis":`), 0o644))
	_, err = LoadFile(broken)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"tuning": {"reference_pitch_hz": -1}}`), 0o644))
	_, err = LoadFile(invalid)
	assert.ErrorIs(t, err, tonal.ErrInvalidTuning)
}
