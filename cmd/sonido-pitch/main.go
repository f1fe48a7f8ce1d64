// Command sonido-pitch prints the pitches found in the spectrum of audio
// files.
//
//	sonido-pitch [flags] file...
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/RyanBlaney/sonido-pitch/config"
	"github.com/RyanBlaney/sonido-pitch/detect"
	"github.com/RyanBlaney/sonido-pitch/logging"
)

type options struct {
	configPath string
	threshold  float64
	start      float64
	end        float64
	source     string
	window     string
	minFreq    float64
	maxFreq    float64
	maxPeaks   int
	refine     bool
	normalize  bool
	jsonOut    bool
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sonido-pitch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.configPath, "config", "", "JSON configuration file")
	fs.Float64Var(&o.threshold, "threshold", 0, "peak threshold in dB relative to the strongest bin (<= 0)")
	fs.Float64Var(&o.start, "start", 0, "analysis window start in seconds")
	fs.Float64Var(&o.end, "end", 0, "analysis window end in seconds (0 = last sample)")
	fs.StringVar(&o.source, "source", string(config.SourceMono), "signal to analyse: mono|sum|diff")
	fs.StringVar(&o.window, "window", "rectangular", "window function: rectangular|hann|hamming|blackman|bartlett|flattop")
	fs.Float64Var(&o.minFreq, "min-freq", config.DefaultMinFrequency, "lowest reported peak in Hz")
	fs.Float64Var(&o.maxFreq, "max-freq", 0, "highest reported peak in Hz (0 = Nyquist)")
	fs.IntVar(&o.maxPeaks, "max-peaks", 0, "report only the N strongest peaks (0 = all)")
	fs.BoolVar(&o.refine, "refine", false, "name pitches from interpolated peak frequencies")
	fs.BoolVar(&o.normalize, "normalize", false, "rescale integer PCM to [-1, 1] while decoding")
	fs.BoolVar(&o.jsonOut, "json", false, "print results as JSON")
	fs.StringVar(&o.logLevel, "log-level", "", "debug|info|warn|error")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: sonido-pitch [flags] file...\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}

	cfg, err := buildConfig(fs, &o)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	logger := logging.NewLogger(stderr, stderr)
	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)

	detector, err := detect.NewDetector(cfg, detect.WithLogger(logger.WithFields(logging.Fields{
		"component": "pitch_detector",
	})))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	results := detector.DetectFiles(ctx, fs.Args())

	if o.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	} else {
		printResults(stdout, results)
	}

	if detect.Failed(results) > 0 {
		return 1
	}
	return 0
}

// buildConfig layers explicitly set flags over the config file (or the
// defaults)
func buildConfig(fs *flag.FlagSet, o *options) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(o.configPath); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			cfg.Analysis.ThresholdDB = o.threshold
		case "start":
			cfg.Analysis.Start = o.start
		case "end":
			cfg.Analysis.End = o.end
		case "source":
			cfg.Analysis.Source = config.SignalSource(o.source)
		case "window":
			cfg.Analysis.WindowFunction = o.window
		case "min-freq":
			cfg.Analysis.MinFrequency = o.minFreq
		case "max-freq":
			cfg.Analysis.MaxFrequency = o.maxFreq
		case "max-peaks":
			cfg.Analysis.MaxPeaks = o.maxPeaks
		case "refine":
			cfg.Analysis.RefinePeaks = o.refine
		case "normalize":
			cfg.Decoder.Normalize = o.normalize
		case "log-level":
			cfg.LogLevel = o.logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printResults(w io.Writer, results []detect.FileResult) {
	multi := len(results) > 1
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s: error: %v\n", r.Path, r.Err)
			continue
		}

		indent := ""
		if multi {
			fmt.Fprintf(w, "%s:\n", r.Path)
			indent = "  "
		}
		for _, line := range r.Result.Lines() {
			fmt.Fprintf(w, "%s%s\n", indent, line)
		}
	}
}
