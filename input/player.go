package input

import (
	"errors"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-synth/synth"
)

// Trigger starts a voice. *synth.Engine implements it.
type Trigger interface {
	Trigger(note synth.Note, s synth.Settings) (*synth.Voice, error)
}

// PressListener observes visual press state changes.
type PressListener func(note synth.Note, pressed bool)

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger for swallowed trigger failures.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Player) {
		if log != nil {
			p.log = log
		}
	}
}

// WithPressListener registers fn for press state changes.
func WithPressListener(fn PressListener) Option {
	return func(p *Player) {
		p.listener = fn
	}
}

// Player is the trigger path shared by all adapters.
type Player struct {
	trig     Trigger
	sel      *Selection
	log      logrus.FieldLogger
	listener PressListener

	mu      sync.Mutex
	pressed map[synth.Note]int
}

// NewPlayer returns a Player triggering t with the settings in sel.
func NewPlayer(t Trigger, sel *Selection, opts ...Option) *Player {
	p := &Player{
		trig:    t,
		sel:     sel,
		log:     logrus.StandardLogger(),
		pressed: make(map[synth.Note]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sel == nil {
		p.sel = NewSelection(p.log)
	}
	return p
}

// Selection returns the selection the player reads.
func (p *Player) Selection() *Selection { return p.sel }

// Play triggers note with the current selection. Failures are logged and
// reported as a nil voice.
func (p *Player) Play(note synth.Note) *synth.Voice {
	return p.play(note, p.sel.Settings(), "")
}

func (p *Player) play(note synth.Note, s synth.Settings, source string) *synth.Voice {
	v, err := p.trig.Trigger(note, s)
	if err != nil {
		entry := p.log.WithFields(logrus.Fields{
			"note":       note.String(),
			"instrument": s.Instrument.String(),
			"source":     source,
		})
		if errors.Is(err, synth.ErrTriggerDeferred) {
			entry.Debug("trigger deferred")
		} else {
			entry.WithError(err).Warn("trigger failed")
		}
		return nil
	}
	return v
}

// Pressed reports whether note is visually pressed by any adapter.
func (p *Player) Pressed(note synth.Note) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pressed[note] > 0
}

// PressedNotes returns the pressed notes in pitch order.
func (p *Player) PressedNotes() []synth.Note {
	p.mu.Lock()
	out := make([]synth.Note, 0, len(p.pressed))
	for n := range p.pressed {
		out = append(out, n)
	}
	p.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].MIDI() < out[j].MIDI() })
	return out
}

// press and release count per note so overlapping adapters agree.
func (p *Player) press(note synth.Note) {
	p.mu.Lock()
	p.pressed[note]++
	first := p.pressed[note] == 1
	p.mu.Unlock()

	if first && p.listener != nil {
		p.listener(note, true)
	}
}

func (p *Player) release(note synth.Note) {
	p.mu.Lock()
	c, ok := p.pressed[note]
	if !ok {
		p.mu.Unlock()
		return
	}
	last := c <= 1
	if last {
		delete(p.pressed, note)
	} else {
		p.pressed[note] = c - 1
	}
	p.mu.Unlock()

	if last && p.listener != nil {
		p.listener(note, false)
	}
}
