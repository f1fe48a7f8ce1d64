package detect

import (
	"fmt"

	"github.com/RyanBlaney/sonido-pitch/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pitch/config"
)

// PeakReport is one spectral peak and the pitch it was named as. Error is set
// instead of the pitch fields when the frequency has no pitch (0 Hz).
type PeakReport struct {
	Frequency      float64 `json:"frequency_hz"` // bin centre
	PitchFrequency float64 `json:"pitch_hz"`     // frequency the pitch was computed from
	Magnitude      float64 `json:"magnitude"`
	LevelDB        float64 `json:"level_db"` // relative to the strongest bin
	Bin            int     `json:"bin"`

	Note        string  `json:"note,omitempty"`
	NoteNumber  float64 `json:"note_number"`
	Cents       int     `json:"cents"`
	MIDI        int     `json:"midi"`
	Description string  `json:"description,omitempty"`

	Error string `json:"error,omitempty"`
}

// Line is the human readable form of the report
func (p PeakReport) Line() string {
	if p.Error != "" {
		return fmt.Sprintf("%.3f Hz (%s)", p.PitchFrequency, p.Error)
	}
	return p.Description
}

// Result is the analysis of one waveform
type Result struct {
	Source     config.SignalSource `json:"source"`
	Format     string              `json:"format,omitempty"`
	SampleRate int                 `json:"sample_rate"`
	Channels   int                 `json:"channels"`
	Samples    int                 `json:"samples"`

	Start float64 `json:"start"`
	End   float64 `json:"end"`

	RMS float64 `json:"rms"` // of the analysed signal over the whole file

	Bins       int     `json:"bins"`
	Resolution float64 `json:"resolution_hz"`

	Peaks       []PeakReport         `json:"peaks"`
	Descriptors spectral.Descriptors `json:"descriptors"`
}

// Lines returns one line per peak in ascending frequency order
func (r *Result) Lines() []string {
	lines := make([]string, len(r.Peaks))
	for i, p := range r.Peaks {
		lines[i] = p.Line()
	}
	return lines
}

// Frequencies returns the peak bin frequencies
func (r *Result) Frequencies() []float64 {
	freqs := make([]float64, len(r.Peaks))
	for i, p := range r.Peaks {
		freqs[i] = p.Frequency
	}
	return freqs
}

// FileResult is the outcome for one file of a batch
type FileResult struct {
	Path   string  `json:"path"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
	Error  string  `json:"error,omitempty"`
}

func (f *FileResult) setErr(err error) {
	f.Err = err
	f.Error = err.Error()
}

// Failed counts the results that carry an error
func Failed(results []FileResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
