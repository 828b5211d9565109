package input

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/cwbudde/algo-synth/synth"
)

// MIDI triggers notes from MIDI note messages on any channel.
type MIDI struct {
	p        *Player
	velocity bool

	mu   sync.Mutex
	held map[uint8]synth.Note
}

// NewMIDI returns a MIDI adapter. With velocity set, the selected volume is
// scaled by velocity/127.
func NewMIDI(p *Player, velocity bool) *MIDI {
	return &MIDI{p: p, velocity: velocity, held: make(map[uint8]synth.Note)}
}

// ListenMIDI opens in if needed and routes its messages to m. The returned
// func stops listening.
func (m *MIDI) ListenMIDI(in drivers.In) (stop func(), err error) {
	if !in.IsOpen() {
		if err := in.Open(); err != nil {
			return nil, fmt.Errorf("input: open MIDI input %s: %w", in, err)
		}
	}

	stop, err = midi.ListenTo(in, m.HandleMessage, midi.HandleError(func(err error) {
		m.p.log.WithField("error", err).Warn("midi input error")
	}))
	if err != nil {
		return nil, fmt.Errorf("input: listen to %s: %w", in, err)
	}
	return stop, nil
}

// HandleMessage processes one message. NoteOn with velocity 0 is a NoteOff.
// Other messages are ignored.
func (m *MIDI) HandleMessage(msg midi.Message, _ int32) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if vel == 0 {
			m.noteOff(key)
			return
		}
		m.noteOn(key, vel)
	case msg.GetNoteOff(&ch, &key, &vel):
		m.noteOff(key)
	}
}

func (m *MIDI) noteOn(key, vel uint8) {
	note := synth.NoteFromMIDI(int(key))

	m.mu.Lock()
	_, held := m.held[key]
	m.held[key] = note
	m.mu.Unlock()

	if !held {
		m.p.press(note)
	}

	s := m.p.sel.Settings()
	if m.velocity {
		s.Volume *= float64(vel) / 127
	}
	m.p.play(note, s, "midi")
}

func (m *MIDI) noteOff(key uint8) {
	m.mu.Lock()
	note, held := m.held[key]
	delete(m.held, key)
	m.mu.Unlock()

	if held {
		m.p.release(note)
	}
}
