package input

import "github.com/cwbudde/algo-synth/synth"

// Default on-screen keyboard: three octaves and three keys from C3.
const DefaultKeyCount = 39

// DefaultStart is the lowest on-screen key.
var DefaultStart = synth.Note{Class: synth.C, Octave: 3}

// Key is one on-screen key.
type Key struct {
	Note  synth.Note
	Black bool
	// Label is the note name on C keys and empty elsewhere.
	Label string
	// White counts the white keys to the left. A black key sits on the
	// boundary between white keys White-1 and White.
	White int
}

// Keys returns count consecutive chromatic keys starting at start.
func Keys(start synth.Note, count int) []Key {
	if count <= 0 {
		return nil
	}
	keys := make([]Key, count)
	white := 0
	base := start.MIDI()
	for i := range keys {
		n := synth.NoteFromMIDI(base + i)
		k := Key{Note: n, Black: n.Class.IsBlack(), White: white}
		if n.Class == synth.C {
			k.Label = n.String()
		}
		if !k.Black {
			white++
		}
		keys[i] = k
	}
	return keys
}
