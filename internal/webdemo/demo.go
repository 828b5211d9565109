// Package webdemo is the browser-facing piano: one engine, the keyboard
// and pointer adapters and the on-screen layout behind a small API that the
// WebAssembly bridge exposes to JavaScript.
package webdemo

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/graph"
	"github.com/cwbudde/algo-synth/input"
	"github.com/cwbudde/algo-synth/measure/level"
	"github.com/cwbudde/algo-synth/synth"
)

// KeyInfo describes one on-screen key.
type KeyInfo struct {
	Note     string
	Black    bool
	Label    string
	White    int
	Shortcut string
}

// Demo drives the page.
type Demo struct {
	ctx      *graph.Context
	engine   *synth.Engine
	player   *input.Player
	keyboard *input.Keyboard
	pointer  *input.Pointer
	keys     []KeyInfo

	mu    sync.Mutex
	last  *synth.Voice
	meter level.Meter
}

// NewDemo builds a demo rendering at sampleRate. The context starts
// suspended and key presses queue until Resume.
func NewDemo(sampleRate float64, log logrus.FieldLogger) (*Demo, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0: %f", sampleRate)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	d := &Demo{ctx: graph.NewContext(core.WithSampleRate(sampleRate))}
	if err := d.ctx.Suspend(); err != nil {
		return nil, err
	}

	engine, err := synth.NewEngine(d.ctx,
		synth.WithLogger(log),
		synth.WithSuspendPolicy(synth.QueueWhenSuspended),
	)
	if err != nil {
		return nil, err
	}
	d.engine = engine
	d.player = input.NewPlayer(engine, input.NewSelection(log), input.WithLogger(log))
	d.keyboard = input.NewKeyboard(d.player, nil)
	d.pointer = input.NewPointer(d.player)

	for _, k := range input.Keys(input.DefaultStart, input.DefaultKeyCount) {
		sym, _ := d.keyboard.Shortcut(k.Note)
		d.keys = append(d.keys, KeyInfo{
			Note:     k.Note.String(),
			Black:    k.Black,
			Label:    k.Label,
			White:    k.White,
			Shortcut: sym,
		})
	}
	return d, nil
}

// Keys returns the on-screen layout.
func (d *Demo) Keys() []KeyInfo {
	return append([]KeyInfo(nil), d.keys...)
}

// SetInstrument selects an instrument and returns the one in effect.
func (d *Demo) SetInstrument(name string) string {
	return d.player.Selection().SetInstrument(name).String()
}

// SetVolume parses a slider value.
func (d *Demo) SetVolume(text string) (float64, error) {
	return d.player.Selection().SetVolume(text)
}

// KeyDown handles a keyboard event and reports whether a voice started.
func (d *Demo) KeyDown(key string, repeat bool) bool {
	return d.track(d.keyboard.KeyDown(key, repeat))
}

// KeyUp handles a keyboard release.
func (d *Demo) KeyUp(key string) {
	d.keyboard.KeyUp(key)
}

// PointerDown handles a press on the key for note.
func (d *Demo) PointerDown(note string) bool {
	return d.track(d.pointer.Down(note))
}

// PointerUp handles a release on the key for note.
func (d *Demo) PointerUp(note string) {
	d.pointer.Up(note)
}

// PointerOut handles the pointer leaving the key for note.
func (d *Demo) PointerOut(note string) {
	d.pointer.Out(note)
}

func (d *Demo) track(v *synth.Voice) bool {
	if v == nil {
		return false
	}
	d.mu.Lock()
	d.last = v
	d.mu.Unlock()
	return true
}

// Pressed returns the visually pressed notes.
func (d *Demo) Pressed() []string {
	notes := d.player.PressedNotes()
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.String()
	}
	return out
}

// Resume starts the clock and plays any queued presses. Browsers only
// allow audio after a gesture, so the page calls this from its first click.
func (d *Demo) Resume() error {
	return d.ctx.Resume()
}

// Suspend pauses the clock.
func (d *Demo) Suspend() error {
	return d.ctx.Suspend()
}

// State returns the context state name.
func (d *Demo) State() string {
	return d.ctx.State().String()
}

// ActiveVoices returns the number of sounding voices.
func (d *Demo) ActiveVoices() int {
	return d.engine.ActiveVoices()
}

// Render fills dst from the graph.
func (d *Demo) Render(dst []float32) {
	d.ctx.Render(dst)

	d.mu.Lock()
	d.meter.Process(dst)
	if d.last != nil && d.last.Ended() {
		d.last = nil
	}
	d.mu.Unlock()
}

// PeakDB returns the output peak since the last call.
func (d *Demo) PeakDB() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	db := d.meter.PeakDB()
	d.meter.Reset()
	return db
}

// ResponseCurveDB returns the filter response of the most recent voice at
// the current time, or a flat curve when it has no filter.
func (d *Demo) ResponseCurveDB(freqs []float64) []float64 {
	d.mu.Lock()
	v := d.last
	d.mu.Unlock()

	if v == nil || v.Filter() == nil {
		return make([]float64, len(freqs))
	}
	return v.Filter().FrequencyResponseDB(freqs, d.ctx.CurrentTime())
}
