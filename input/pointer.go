package input

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-synth/synth"
)

// Pointer triggers notes from on-screen keys identified by note name.
type Pointer struct {
	p *Player

	mu   sync.Mutex
	down map[synth.Note]bool
}

// NewPointer returns a Pointer.
func NewPointer(p *Player) *Pointer {
	return &Pointer{p: p, down: make(map[synth.Note]bool)}
}

// Down presses the key named noteID and triggers it. Every press triggers,
// matching a mouse click; an invalid name is logged and ignored.
func (ptr *Pointer) Down(noteID string) *synth.Voice {
	note, err := synth.ParseNote(noteID)
	if err != nil {
		ptr.p.log.WithFields(logrus.Fields{
			"note":  noteID,
			"error": err,
		}).Warn("pointer on unknown key")
		return nil
	}

	ptr.mu.Lock()
	wasDown := ptr.down[note]
	ptr.down[note] = true
	ptr.mu.Unlock()

	if !wasDown {
		ptr.p.press(note)
	}
	return ptr.p.play(note, ptr.p.sel.Settings(), "pointer")
}

// Up releases the key named noteID.
func (ptr *Pointer) Up(noteID string) {
	ptr.lift(noteID)
}

// Out releases the key when the pointer leaves it.
func (ptr *Pointer) Out(noteID string) {
	ptr.lift(noteID)
}

func (ptr *Pointer) lift(noteID string) {
	note, err := synth.ParseNote(noteID)
	if err != nil {
		return
	}

	ptr.mu.Lock()
	wasDown := ptr.down[note]
	delete(ptr.down, note)
	ptr.mu.Unlock()

	if wasDown {
		ptr.p.release(note)
	}
}
