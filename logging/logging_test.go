package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_RoutesByLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewLogger(&out, &errOut)

	logger.Debug("hidden")
	logger.Info("analysed", Fields{"peaks": 3})
	logger.Warn("low signal")
	logger.Error(errors.New("boom"), "decode failed", Fields{"file": "a.wav"})

	assert.Equal(t, "[INFO] analysed peaks=3\n", out.String())
	assert.Equal(t, "[WARN] low signal\n[ERROR] decode failed: boom file=a.wav\n", errOut.String())
}

func TestDefaultLogger_SetLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewLogger(&out, &errOut)
	logger.SetLevel(DebugLevel)

	logger.Debug("window", Fields{"start": 0.5})

	assert.Equal(t, "[DEBUG] window start=0.5\n", out.String())
}

func TestDefaultLogger_WithFieldsSortsAndMerges(t *testing.T) {
	var out, errOut bytes.Buffer
	base := NewLogger(&out, &errOut)

	child := base.WithFields(Fields{"component": "spectral", "b": 2})
	child.Info("frame", Fields{"a": 1, "b": 3})

	assert.Equal(t, "[INFO] frame a=1 b=3 component=spectral\n", out.String())
}

func TestDefaultLogger_WithContext(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewLogger(&out, &errOut)

	ctx := ContextWithFields(context.Background(), Fields{"file": "sine.wav"})
	ctx = ContextWithFields(ctx, Fields{"window": "0-1s"})
	logger.WithContext(ctx).Info("start")

	assert.Equal(t, "[INFO] start file=sine.wav window=0-1s\n", out.String())
}

func TestDefaultLogger_FatalExits(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewLogger(&out, &errOut)
	code := -1
	logger.exit = func(c int) { code = c }

	logger.Fatal(errors.New("bad"), "giving up")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "[FATAL] giving up: bad")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", DebugLevel, true},
		{"INFO", InfoLevel, true},
		{"warning", WarnLevel, true},
		{"error", ErrorLevel, true},
		{"", InfoLevel, true},
		{"verbose", InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSetGlobalLogger_NilDisables(t *testing.T) {
	prev := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(prev) })

	SetGlobalLogger(nil)
	_, isNoOp := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, isNoOp)
}
