package synth

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// PitchClass is a semitone index within an octave, 0 = C.
type PitchClass int

// Pitch classes in chromatic order.
const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// NoteNames lists the chromatic pitch class names, sharps only.
var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// maxOctave bounds parsed octaves well past the audible range.
const maxOctave = 64

var letterClass = map[byte]PitchClass{'C': C, 'D': D, 'E': E, 'F': F, 'G': G, 'A': A, 'B': B}

// String returns the sharp spelling.
func (p PitchClass) String() string {
	if p < 0 || p > B {
		return fmt.Sprintf("PitchClass(%d)", int(p))
	}
	return NoteNames[p]
}

// IsBlack reports whether the pitch class is a raised (black key) semitone.
func (p PitchClass) IsBlack() bool {
	switch p {
	case CSharp, DSharp, FSharp, GSharp, ASharp:
		return true
	default:
		return false
	}
}

// Note is a pitch class in an octave. Octave 4 holds A = 440 Hz.
type Note struct {
	Class  PitchClass
	Octave int
}

// String returns scientific pitch notation, e.g. "C#4".
func (n Note) String() string {
	return n.Class.String() + strconv.Itoa(n.Octave)
}

// Valid reports whether the note has a pitch class in range and a finite,
// positive frequency.
func (n Note) Valid() bool {
	if n.Class < C || n.Class > B {
		return false
	}
	f := n.Frequency()
	return f > 0 && !math.IsInf(f, 0)
}

// Frequency returns the equal-tempered frequency in Hz. The result is
// meaningless for notes that fail [Note.Valid].
func (n Note) Frequency() float64 {
	// Scaling by a power of two keeps A4 exact and octaves exact doublings.
	return math.Ldexp(440*core.SemitoneRatio(float64(n.Class-A)), n.Octave-4)
}

// MIDI returns the MIDI note number, 69 for A4.
func (n Note) MIDI() int {
	return (n.Octave+1)*12 + int(n.Class)
}

// Transpose returns the note shifted by semitones.
func (n Note) Transpose(semitones int) Note {
	m := n.MIDI() + semitones
	return NoteFromMIDI(m)
}

// NoteFromMIDI converts a MIDI note number (69 = A4).
func NoteFromMIDI(m int) Note {
	oct := m / 12
	cls := m % 12
	if cls < 0 {
		cls += 12
		oct--
	}
	return Note{Class: PitchClass(cls), Octave: oct - 1}
}

// Frequency resolves note to Hz, failing with ErrInvalidNote rather than
// returning NaN or Inf.
func Frequency(n Note) (float64, error) {
	if !n.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidNote, n)
	}
	return n.Frequency(), nil
}

// ParseNote parses a letter, an optional '#' or 'b' and an integer octave,
// e.g. "C#4", "Bb3", "a-1". Flats are normalized to sharps; Cb and E#
// style spellings wrap into the neighbouring octave.
func ParseNote(s string) (Note, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Note{}, fmt.Errorf("%w: empty", ErrInvalidNote)
	}

	cls, ok := letterClass[upper(s[0])]
	if !ok {
		return Note{}, fmt.Errorf("%w: %q", ErrInvalidNote, raw)
	}
	s = s[1:]

	shift := 0
	if len(s) > 0 {
		switch s[0] {
		case '#':
			shift = 1
			s = s[1:]
		case 'b':
			// "b" followed by a digit or sign is a flat.
			if len(s) > 1 {
				shift = -1
				s = s[1:]
			}
		}
	}

	oct, err := strconv.Atoi(s)
	if err != nil || s[0] == '+' {
		return Note{}, fmt.Errorf("%w: %q", ErrInvalidNote, raw)
	}
	if oct < -maxOctave || oct > maxOctave {
		return Note{}, fmt.Errorf("%w: %q out of range", ErrInvalidNote, raw)
	}

	n := NoteFromMIDI(Note{Class: cls, Octave: oct}.MIDI() + shift)
	if !n.Valid() {
		return Note{}, fmt.Errorf("%w: %q out of range", ErrInvalidNote, raw)
	}
	return n, nil
}

// MustParseNote is ParseNote for constant tables; it panics on error.
func MustParseNote(s string) Note {
	n, err := ParseNote(s)
	if err != nil {
		panic(err)
	}
	return n
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
