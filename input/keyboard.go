package input

import (
	"sync"

	"github.com/cwbudde/algo-synth/synth"
)

// DefaultKeyMap returns the home-row layout: white keys on a s d f g h j k l,
// black keys on w e t y u o, covering C4 to D5.
func DefaultKeyMap() map[string]synth.Note {
	return map[string]synth.Note{
		"a": {Class: synth.C, Octave: 4},
		"w": {Class: synth.CSharp, Octave: 4},
		"s": {Class: synth.D, Octave: 4},
		"e": {Class: synth.DSharp, Octave: 4},
		"d": {Class: synth.E, Octave: 4},
		"f": {Class: synth.F, Octave: 4},
		"t": {Class: synth.FSharp, Octave: 4},
		"g": {Class: synth.G, Octave: 4},
		"y": {Class: synth.GSharp, Octave: 4},
		"h": {Class: synth.A, Octave: 4},
		"u": {Class: synth.ASharp, Octave: 4},
		"j": {Class: synth.B, Octave: 4},
		"k": {Class: synth.C, Octave: 5},
		"o": {Class: synth.CSharp, Octave: 5},
		"l": {Class: synth.D, Octave: 5},
	}
}

// Keyboard triggers notes from key symbols.
type Keyboard struct {
	p      *Player
	keymap map[string]synth.Note

	mu   sync.Mutex
	held map[string]synth.Note
}

// NewKeyboard returns a Keyboard over keymap; nil selects DefaultKeyMap.
func NewKeyboard(p *Player, keymap map[string]synth.Note) *Keyboard {
	if keymap == nil {
		keymap = DefaultKeyMap()
	}
	return &Keyboard{p: p, keymap: keymap, held: make(map[string]synth.Note)}
}

// Lookup returns the note mapped to sym.
func (k *Keyboard) Lookup(sym string) (synth.Note, bool) {
	n, ok := k.keymap[sym]
	return n, ok
}

// Shortcut returns the symbol mapped to note, if any.
func (k *Keyboard) Shortcut(note synth.Note) (string, bool) {
	for sym, n := range k.keymap {
		if n == note {
			return sym, true
		}
	}
	return "", false
}

// KeyDown triggers the note for sym. OS auto-repeat and keys that are
// already held are ignored, as are unmapped symbols.
func (k *Keyboard) KeyDown(sym string, repeat bool) *synth.Voice {
	note, ok := k.keymap[sym]
	if !ok || repeat {
		return nil
	}

	k.mu.Lock()
	if _, held := k.held[sym]; held {
		k.mu.Unlock()
		return nil
	}
	k.held[sym] = note
	k.mu.Unlock()

	k.p.press(note)
	return k.p.play(note, k.p.sel.Settings(), "keyboard")
}

// KeyUp clears the press state for sym.
func (k *Keyboard) KeyUp(sym string) {
	k.mu.Lock()
	note, held := k.held[sym]
	delete(k.held, sym)
	k.mu.Unlock()

	if held {
		k.p.release(note)
	}
}

// Held reports whether sym is currently held.
func (k *Keyboard) Held(sym string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.held[sym]
	return ok
}
