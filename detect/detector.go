// Package detect runs the pitch detection pipeline: a waveform is reduced to
// one signal (mono, stereo sum or stereo difference), its spectrum is
// computed over the configured window, and every spectral peak is named as a
// musical pitch.
package detect

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/RyanBlaney/sonido-pitch/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pitch/algorithms/windowing"
	"github.com/RyanBlaney/sonido-pitch/config"
	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/transcode"
	"github.com/RyanBlaney/sonido-pitch/waveform"
)

var ErrNilWaveform = errors.New("nil waveform")

// Option configures a Detector
type Option func(*Detector)

// WithDecoder replaces the decoder used by DetectFile and DetectFiles
func WithDecoder(decoder transcode.Decoder) Option {
	return func(d *Detector) {
		d.decoder = decoder
	}
}

// WithLogger replaces the detector's logger
func WithLogger(logger logging.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// Detector holds a validated configuration. It keeps no per-call state and
// may be used from several goroutines.
type Detector struct {
	analysis config.AnalysisConfig
	tuning   tonal.Tuning
	windowFn windowing.Function
	decoder  transcode.Decoder
	logger   logging.Logger
}

// NewDetector validates cfg and builds a detector; nil selects the defaults
func NewDetector(cfg *config.Config, opts ...Option) (*Detector, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	windowFn, err := windowing.Parse(cfg.Analysis.WindowFunction)
	if err != nil {
		return nil, err
	}

	d := &Detector{
		analysis: cfg.Analysis,
		tuning:   cfg.Tuning,
		windowFn: windowFn,
		decoder:  transcode.NewDecoder(&cfg.Decoder),
		logger: logging.WithFields(logging.Fields{
			"component": "pitch_detector",
		}),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Detect analyses an in-memory waveform
func (d *Detector) Detect(ctx context.Context, w *waveform.Waveform) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrNilWaveform
	}

	logger := d.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "Detect",
		"source":   string(d.analysis.Source),
	})

	signal, err := d.selectSignal(w)
	if err != nil {
		return nil, err
	}

	analyzer, err := spectral.NewAnalyzer(signal, w.SampleRate(),
		spectral.WithWindowFunction(d.windowFn),
		spectral.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	window := spectral.Window{Start: d.analysis.Start, End: d.analysis.End}
	if window.End == 0 {
		window.End = analyzer.DefaultWindow().End
	}

	frame, err := analyzer.Spectrum(window)
	if err != nil {
		return nil, err
	}

	peaks := d.selectPeaks(frame)
	maxMag := common.MaxAbs(frame.Magnitudes)
	reports := make([]PeakReport, 0, len(peaks))
	for _, peak := range peaks {
		r := d.report(frame, peak, logger)
		r.LevelDB = common.AmplitudeToDB(peak.Magnitude / maxMag)
		reports = append(reports, r)
	}

	result := &Result{
		Source:      d.analysis.Source,
		SampleRate:  w.SampleRate(),
		Channels:    w.ChannelCount(),
		Samples:     w.Len(),
		RMS:         common.RMS(signal),
		Start:       window.Start,
		End:         window.End,
		Bins:        frame.Len(),
		Resolution:  frame.Resolution(),
		Peaks:       reports,
		Descriptors: spectral.Describe(frame, d.analysis.RolloffPercent),
	}

	logger.Debug("Detection completed", logging.Fields{
		"bins":  result.Bins,
		"peaks": len(result.Peaks),
	})

	return result, nil
}

// DetectFile decodes path and analyses it
func (d *Detector) DetectFile(ctx context.Context, path string) (*Result, error) {
	data, err := d.decoder.DecodeFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	result, err := d.Detect(ctx, data.Waveform)
	if err != nil {
		return nil, fmt.Errorf("failed to analyse %s: %w", path, err)
	}
	result.Format = data.Format

	return result, nil
}

// DetectFiles analyses each path in order. A failing file is recorded in its
// FileResult and the batch continues. Cancellation is checked between files;
// files not reached carry the context error.
func (d *Detector) DetectFiles(ctx context.Context, paths []string) []FileResult {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DetectFiles",
		"files":    len(paths),
	})

	results := make([]FileResult, len(paths))
	for i, path := range paths {
		results[i].Path = path

		if err := ctx.Err(); err != nil {
			results[i].setErr(err)
			continue
		}

		result, err := d.DetectFile(ctx, path)
		if err != nil {
			logger.Error(err, "File analysis failed", logging.Fields{"path": path})
			results[i].setErr(err)
			continue
		}
		results[i].Result = result
	}

	return results
}

func (d *Detector) selectSignal(w *waveform.Waveform) ([]float64, error) {
	switch d.analysis.Source {
	case config.SourceSum:
		return w.StereoSum()
	case config.SourceDiff:
		return w.StereoDiff()
	default:
		return w.ToMono(), nil
	}
}

// selectPeaks applies the report filters. Peaks outside the frequency range
// are dropped, then the MaxPeaks strongest are kept in ascending frequency
// order.
func (d *Detector) selectPeaks(frame *spectral.Frame) []spectral.Peak {
	peaks := spectral.DetectPeaks(frame, d.analysis.ThresholdDB)

	kept := peaks[:0]
	for _, p := range peaks {
		if p.Frequency < d.analysis.MinFrequency {
			continue
		}
		if d.analysis.MaxFrequency > 0 && p.Frequency > d.analysis.MaxFrequency {
			continue
		}
		kept = append(kept, p)
	}

	if d.analysis.MaxPeaks > 0 && len(kept) > d.analysis.MaxPeaks {
		slices.SortStableFunc(kept, func(a, b spectral.Peak) int {
			return cmp.Compare(b.Magnitude, a.Magnitude)
		})
		kept = kept[:d.analysis.MaxPeaks]
		slices.SortFunc(kept, func(a, b spectral.Peak) int {
			return cmp.Compare(a.BinIndex, b.BinIndex)
		})
	}

	return kept
}

func (d *Detector) report(frame *spectral.Frame, peak spectral.Peak, logger logging.Logger) PeakReport {
	hz := peak.Frequency
	if d.analysis.RefinePeaks {
		hz = spectral.RefineFrequency(frame, peak)
	}

	r := PeakReport{
		Frequency:      peak.Frequency,
		PitchFrequency: hz,
		Magnitude:      peak.Magnitude,
		Bin:            peak.BinIndex,
	}

	pitch, err := d.tuning.NewPitch(hz)
	if err != nil {
		// a DC bin surviving the filters cannot be named
		logger.Warn("Peak has no pitch", logging.Fields{
			"frequency": hz,
			"bin":       peak.BinIndex,
			"error":     err.Error(),
		})
		r.Error = err.Error()
		return r
	}

	r.Note = pitch.Name()
	r.NoteNumber = pitch.NoteNumber()
	r.Cents = pitch.Cents()
	r.MIDI = pitch.MIDI()
	r.Description = pitch.Describe()
	return r
}
