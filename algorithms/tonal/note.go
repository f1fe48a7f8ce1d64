package tonal

import "fmt"

// NoteName is a pitch class within an octave, C = 0 .. B = 11.
type NoteName int

const (
	C NoteName = iota
	Db
	D
	Eb
	E
	F
	Gb
	G
	Ab
	A
	Bb
	B
)

// SemitonesPerOctave is the number of equal-tempered steps in an octave
const SemitonesPerOctave = 12

// Valid reports whether n is one of the twelve pitch classes.
func (n NoteName) Valid() bool {
	return n >= C && n <= B
}

func (n NoteName) String() string {
	switch n {
	case C:
		return "C"
	case Db:
		return "Db"
	case D:
		return "D"
	case Eb:
		return "Eb"
	case E:
		return "E"
	case F:
		return "F"
	case Gb:
		return "Gb"
	case G:
		return "G"
	case Ab:
		return "Ab"
	case A:
		return "A"
	case Bb:
		return "Bb"
	case B:
		return "B"
	default:
		return fmt.Sprintf("NoteName(%d)", int(n))
	}
}

// Interval is a distance in semitones, up to one octave.
type Interval int

const (
	Unison Interval = iota
	MinorSecond
	MajorSecond
	MinorThird
	MajorThird
	Fourth
	Tritone
	Fifth
	MinorSixth
	MajorSixth
	MinorSeventh
	MajorSeventh
	Octave
)

func (i Interval) String() string {
	switch i {
	case Unison:
		return "unison"
	case MinorSecond:
		return "minor second"
	case MajorSecond:
		return "major second"
	case MinorThird:
		return "minor third"
	case MajorThird:
		return "major third"
	case Fourth:
		return "fourth"
	case Tritone:
		return "tritone"
	case Fifth:
		return "fifth"
	case MinorSixth:
		return "minor sixth"
	case MajorSixth:
		return "major sixth"
	case MinorSeventh:
		return "minor seventh"
	case MajorSeventh:
		return "major seventh"
	case Octave:
		return "octave"
	default:
		return fmt.Sprintf("Interval(%d)", int(i))
	}
}
