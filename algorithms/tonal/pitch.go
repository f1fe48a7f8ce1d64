// Package tonal maps frequencies to equal-tempered note numbers and renders
// them as note names with octave and cent error.
package tonal

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidFrequency is returned for non-positive (or non-finite)
	// frequencies.
	ErrInvalidFrequency = errors.New("frequency must be positive")

	ErrInvalidNote   = errors.New("invalid note name")
	ErrInvalidTuning = errors.New("invalid tuning")
)

const (
	// ReferencePitchHz is concert A.
	ReferencePitchHz = 440.0

	// ReferenceNoteNumber places concert A in octave 4 (scientific pitch
	// notation), so note number 0 is C0 at about 16.35 Hz. 9 is A's
	// semitone.
	ReferenceNoteNumber = 4*SemitonesPerOctave + 9

	// OctaveOffset is added to the computed octave index when naming notes.
	OctaveOffset = 0
)

// Tuning pins a note number to a reference frequency.
type Tuning struct {
	ReferencePitchHz    float64 `json:"reference_pitch_hz"`
	ReferenceNoteNumber float64 `json:"reference_note_number"`
	OctaveOffset        int     `json:"octave_offset"`
}

// DefaultTuning is A4 = 440 Hz with C0 as note number 0.
var DefaultTuning = Tuning{
	ReferencePitchHz:    ReferencePitchHz,
	ReferenceNoteNumber: ReferenceNoteNumber,
	OctaveOffset:        OctaveOffset,
}

// Validate checks that the reference is a positive finite frequency and a
// finite note number.
func (t Tuning) Validate() error {
	if !(t.ReferencePitchHz > 0) || math.IsInf(t.ReferencePitchHz, 0) {
		return fmt.Errorf("%w: reference pitch %v Hz", ErrInvalidTuning, t.ReferencePitchHz)
	}
	if math.IsNaN(t.ReferenceNoteNumber) || math.IsInf(t.ReferenceNoteNumber, 0) {
		return fmt.Errorf("%w: reference note number %v", ErrInvalidTuning, t.ReferenceNoteNumber)
	}
	return nil
}

// BaseFrequency is the frequency of note number 0.
func (t Tuning) BaseFrequency() float64 {
	return t.ReferencePitchHz / math.Exp2(t.ReferenceNoteNumber/SemitonesPerOctave)
}

// FrequencyToNoteNumber returns the continuous note number of hz. The
// reference pitch maps exactly to the reference note number.
func (t Tuning) FrequencyToNoteNumber(hz float64) (float64, error) {
	if !(hz > 0) || math.IsInf(hz, 1) {
		return 0, fmt.Errorf("%w: %v Hz", ErrInvalidFrequency, hz)
	}
	return t.ReferenceNoteNumber + SemitonesPerOctave*math.Log2(hz/t.ReferencePitchHz), nil
}

// NoteNumberToFrequency is the inverse of FrequencyToNoteNumber.
func (t Tuning) NoteNumberToFrequency(noteNumber float64) float64 {
	return t.ReferencePitchHz * math.Exp2((noteNumber-t.ReferenceNoteNumber)/SemitonesPerOctave)
}

// NewPitch returns the pitch of a frequency.
func (t Tuning) NewPitch(hz float64) (Pitch, error) {
	if _, err := t.FrequencyToNoteNumber(hz); err != nil {
		return Pitch{}, err
	}
	return Pitch{hz: hz, tuning: t}, nil
}

// FromNoteNumber returns the pitch at a continuous note number.
func (t Tuning) FromNoteNumber(noteNumber float64) Pitch {
	return Pitch{hz: t.NoteNumberToFrequency(noteNumber), tuning: t}
}

// FromMusical returns the exact pitch of note in the given octave index
// (before OctaveOffset is applied).
func (t Tuning) FromMusical(note NoteName, octave int) (Pitch, error) {
	if !note.Valid() {
		return Pitch{}, fmt.Errorf("%w: %d", ErrInvalidNote, int(note))
	}
	return t.FromNoteNumber(float64(int(note) + SemitonesPerOctave*octave)), nil
}

// FrequencyToNoteNumber converts hz using DefaultTuning.
func FrequencyToNoteNumber(hz float64) (float64, error) {
	return DefaultTuning.FrequencyToNoteNumber(hz)
}

// NoteNumberToFrequency converts a note number using DefaultTuning.
func NoteNumberToFrequency(noteNumber float64) float64 {
	return DefaultTuning.NoteNumberToFrequency(noteNumber)
}

// NewPitch returns the pitch of hz under DefaultTuning.
func NewPitch(hz float64) (Pitch, error) {
	return DefaultTuning.NewPitch(hz)
}

// FromMusical returns a pitch from a note name and octave under
// DefaultTuning, e.g. FromMusical(A, 4) is 440 Hz.
func FromMusical(note NoteName, octave int) (Pitch, error) {
	return DefaultTuning.FromMusical(note, octave)
}

// Pitch is an immutable frequency. Note number, name, octave and cent error
// are derived from it on demand. The zero value is not a valid pitch; build
// one with NewPitch, FromNoteNumber or FromMusical.
type Pitch struct {
	hz     float64
	tuning Tuning
}

// Hz returns the frequency.
func (p Pitch) Hz() float64 {
	return p.hz
}

// Tuning returns the tuning the pitch is expressed in.
func (p Pitch) Tuning() Tuning {
	return p.tuning
}

// NoteNumber returns the continuous note number; the fractional part is the
// tuning offset from the equal-tempered grid.
func (p Pitch) NoteNumber() float64 {
	n, err := p.tuning.FrequencyToNoteNumber(p.hz)
	if err != nil {
		return math.NaN()
	}
	return n
}

// Valid reports whether the pitch has a note number.
func (p Pitch) Valid() bool {
	return !math.IsNaN(p.NoteNumber())
}

// Nearest returns the closest equal-tempered note number, or 0 for an
// invalid pitch.
func (p Pitch) Nearest() int {
	n := p.NoteNumber()
	if math.IsNaN(n) {
		return 0
	}
	return int(math.Round(n))
}

// NoteName returns the pitch class of the nearest note.
func (p Pitch) NoteName() NoteName {
	_, semitone := splitOctave(p.Nearest())
	return NoteName(semitone)
}

// Octave returns the octave of the nearest note in the tuning's numbering.
func (p Pitch) Octave() int {
	octave, _ := splitOctave(p.Nearest())
	return octave + p.tuning.OctaveOffset
}

// Cents returns the signed distance to the nearest note in cents, within
// [-50, 50].
func (p Pitch) Cents() int {
	n := p.NoteNumber()
	if math.IsNaN(n) {
		return 0
	}
	return int(math.Round((n - math.Round(n)) * 100))
}

// MIDI returns the MIDI note number of the nearest note (C-1 = 0, A4 = 69).
func (p Pitch) MIDI() int {
	return p.Nearest() + SemitonesPerOctave*(p.tuning.OctaveOffset+1)
}

// Transpose returns the pitch shifted by an interval; negative intervals
// shift down.
func (p Pitch) Transpose(iv Interval) Pitch {
	return p.tuning.FromNoteNumber(p.NoteNumber() + float64(iv))
}

// Name renders the nearest note with its octave, e.g. "A4" or "Db-1". An
// invalid pitch has no name.
func (p Pitch) Name() string {
	if !p.Valid() {
		return ""
	}
	return fmt.Sprintf("%s%d", p.NoteName(), p.Octave())
}

// Describe renders the name, the cent error when non-zero and the
// frequency: "A4 440.000 Hz", "G3 +35 cent 200.000 Hz".
func (p Pitch) Describe() string {
	if !p.Valid() {
		return fmt.Sprintf("invalid pitch %.3f Hz", p.hz)
	}

	var b strings.Builder
	b.WriteString(p.Name())
	if cents := p.Cents(); cents != 0 {
		fmt.Fprintf(&b, " %+d cent", cents)
	}
	fmt.Fprintf(&b, " %.3f Hz", p.hz)
	return b.String()
}

func (p Pitch) String() string {
	return p.Describe()
}

// splitOctave is a floor divmod by 12 so that negative note numbers land in
// negative octaves with a semitone in [0, 12).
func splitOctave(n int) (octave, semitone int) {
	octave = n / SemitonesPerOctave
	semitone = n % SemitonesPerOctave
	if semitone < 0 {
		semitone += SemitonesPerOctave
		octave--
	}
	return octave, semitone
}
