package input

import (
	"bytes"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/graph"
	"github.com/cwbudde/algo-synth/synth"
)

type call struct {
	note     synth.Note
	settings synth.Settings
}

type recorder struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (r *recorder) Trigger(n synth.Note, s synth.Settings) (*synth.Voice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{n, s})
	if r.err != nil {
		return nil, r.err
	}
	return &synth.Voice{}, nil
}

func (r *recorder) notes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		out = append(out, c.note.String())
	}
	return out
}

func testLogger() (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	return log, buf
}

func newTestPlayer(t *testing.T, opts ...Option) (*Player, *recorder, *bytes.Buffer) {
	t.Helper()
	log, buf := testLogger()
	rec := &recorder{}
	p := NewPlayer(rec, NewSelection(log), append([]Option{WithLogger(log)}, opts...)...)
	return p, rec, buf
}

func TestDefaultKeyMapCoversC4ToD5(t *testing.T) {
	km := DefaultKeyMap()
	require.Len(t, km, 15)

	order := "awsedftgyhujkol"
	want := synth.MustParseNote("C4").MIDI()
	for i := range order {
		n, ok := km[order[i:i+1]]
		require.True(t, ok, order[i:i+1])
		assert.Equal(t, want+i, n.MIDI(), order[i:i+1])
	}
}

func TestKeyboardSuppressesRepeatAndHeld(t *testing.T) {
	p, rec, _ := newTestPlayer(t)
	kb := NewKeyboard(p, nil)

	assert.NotNil(t, kb.KeyDown("a", false))
	assert.Nil(t, kb.KeyDown("a", true))
	assert.Nil(t, kb.KeyDown("a", false))
	assert.True(t, kb.Held("a"))
	assert.True(t, p.Pressed(synth.MustParseNote("C4")))

	kb.KeyUp("a")
	assert.False(t, kb.Held("a"))
	assert.False(t, p.Pressed(synth.MustParseNote("C4")))

	assert.NotNil(t, kb.KeyDown("a", false))
	assert.Equal(t, []string{"C4", "C4"}, rec.notes())
}

func TestKeyboardUnmappedIsSilent(t *testing.T) {
	p, rec, buf := newTestPlayer(t)
	kb := NewKeyboard(p, nil)

	assert.Nil(t, kb.KeyDown("z", false))
	kb.KeyUp("z")
	assert.Empty(t, rec.notes())
	assert.Empty(t, buf.String())
}

func TestKeyboardShortcut(t *testing.T) {
	kb := NewKeyboard(nil, nil)
	sym, ok := kb.Shortcut(synth.MustParseNote("A4"))
	require.True(t, ok)
	assert.Equal(t, "h", sym)

	_, ok = kb.Shortcut(synth.MustParseNote("A2"))
	assert.False(t, ok)
}

func TestTriggerFailureIsLogged(t *testing.T) {
	p, rec, buf := newTestPlayer(t)
	rec.err = synth.ErrBackendUnavailable
	kb := NewKeyboard(p, nil)

	assert.Nil(t, kb.KeyDown("h", false))
	assert.Contains(t, buf.String(), "trigger failed")
	assert.Contains(t, buf.String(), "A4")
	assert.Contains(t, buf.String(), "keyboard")
}

func TestDeferredTriggerIsNotAFailure(t *testing.T) {
	p, rec, buf := newTestPlayer(t)
	rec.err = synth.ErrTriggerDeferred
	kb := NewKeyboard(p, nil)

	assert.Nil(t, kb.KeyDown("h", false))
	assert.Equal(t, []string{"A4"}, rec.notes())
	assert.NotContains(t, buf.String(), "trigger failed")
}

func TestPointerPressState(t *testing.T) {
	var mu sync.Mutex
	var changes []string
	p, rec, buf := newTestPlayer(t, WithPressListener(func(n synth.Note, down bool) {
		mu.Lock()
		defer mu.Unlock()
		state := "up"
		if down {
			state = "down"
		}
		changes = append(changes, n.String()+" "+state)
	}))
	ptr := NewPointer(p)

	assert.NotNil(t, ptr.Down("C#4"))
	assert.NotNil(t, ptr.Down("Db4"))
	assert.True(t, p.Pressed(synth.MustParseNote("C#4")))

	ptr.Out("C#4")
	assert.False(t, p.Pressed(synth.MustParseNote("C#4")))
	ptr.Up("C#4")

	assert.Nil(t, ptr.Down("H2"))
	assert.Contains(t, buf.String(), "unknown key")

	assert.Equal(t, []string{"C#4", "C#4"}, rec.notes())
	assert.Equal(t, []string{"C#4 down", "C#4 up"}, changes)
}

func TestPressStateSharedAcrossAdapters(t *testing.T) {
	p, _, _ := newTestPlayer(t)
	kb := NewKeyboard(p, nil)
	ptr := NewPointer(p)
	c4 := synth.MustParseNote("C4")

	kb.KeyDown("a", false)
	ptr.Down("C4")
	ptr.Up("C4")
	assert.True(t, p.Pressed(c4))

	kb.KeyDown("h", false)
	assert.Equal(t, []synth.Note{c4, synth.MustParseNote("A4")}, p.PressedNotes())

	kb.KeyUp("a")
	kb.KeyUp("h")
	assert.Empty(t, p.PressedNotes())
}

func TestMIDINoteOnOff(t *testing.T) {
	p, rec, _ := newTestPlayer(t)
	p.Selection().SetInstrument("santur")
	m := NewMIDI(p, true)

	m.HandleMessage(midi.NoteOn(0, 69, 127), 0)
	m.HandleMessage(midi.NoteOn(3, 60, 0), 0)

	a4 := synth.MustParseNote("A4")
	assert.True(t, p.Pressed(a4))

	m.HandleMessage(midi.NoteOff(0, 69), 0)
	assert.False(t, p.Pressed(a4))

	m.HandleMessage(midi.NoteOn(0, 72, 64), 0)
	m.HandleMessage(midi.ControlChange(0, 7, 100), 0)

	require.Len(t, rec.calls, 2)
	assert.Equal(t, a4, rec.calls[0].note)
	assert.Equal(t, synth.Santur, rec.calls[0].settings.Instrument)
	assert.InDelta(t, synth.DefaultVolume, rec.calls[0].settings.Volume, 1e-12)
	assert.Equal(t, "C5", rec.calls[1].note.String())
	assert.InDelta(t, synth.DefaultVolume*64/127, rec.calls[1].settings.Volume, 1e-12)
}

func TestSelection(t *testing.T) {
	log, buf := testLogger()
	sel := NewSelection(log)
	assert.Equal(t, synth.DefaultSettings(), sel.Settings())

	assert.Equal(t, synth.Sitar, sel.SetInstrument("sitar"))
	assert.Equal(t, synth.Piano, sel.SetInstrument("kazoo"))
	assert.Contains(t, buf.String(), "kazoo")

	v, err := sel.SetVolume("0.8")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, v, 1e-12)

	v, err = sel.SetVolume("7")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = sel.SetVolume("loud")
	assert.ErrorIs(t, err, synth.ErrInvalidVolume)
	assert.Equal(t, 1.0, v)
	assert.Equal(t, synth.Settings{Instrument: synth.Piano, Volume: 1}, sel.Settings())
}

func TestKeysLayout(t *testing.T) {
	keys := Keys(DefaultStart, DefaultKeyCount)
	require.Len(t, keys, 39)

	assert.Equal(t, "C3", keys[0].Note.String())
	assert.Equal(t, "D6", keys[38].Note.String())

	var labels []string
	black := 0
	for _, k := range keys {
		if k.Label != "" {
			labels = append(labels, k.Label)
		}
		if k.Black {
			black++
		}
	}
	assert.Equal(t, []string{"C3", "C4", "C5", "C6"}, labels)
	assert.Equal(t, 16, black)

	assert.True(t, keys[1].Black)
	assert.Equal(t, 1, keys[1].White)
	assert.Equal(t, 2, keys[4].White)
	assert.Nil(t, Keys(DefaultStart, 0))
}

func TestKeyboardDrivesEngine(t *testing.T) {
	ctx := graph.NewContext(core.WithSampleRate(8000))
	log, _ := testLogger()
	e, err := synth.NewEngine(ctx, synth.WithLogger(log))
	require.NoError(t, err)

	kb := NewKeyboard(NewPlayer(e, NewSelection(log), WithLogger(log)), nil)
	v := kb.KeyDown("h", false)
	require.NotNil(t, v)
	assert.Equal(t, 440.0, v.Frequency())
	assert.Equal(t, 1, e.ActiveVoices())

	ctx.RenderSeconds(2)
	assert.True(t, v.Ended())
	assert.Zero(t, e.ActiveVoices())
}
