package synth

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-synth/dsp/graph"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

func TestBuiltinRecipesValidate(t *testing.T) {
	book := DefaultBook()
	assert.Equal(t, Instruments(), book.Instruments())
	for inst, r := range book {
		assert.NoError(t, r.Validate(), inst.String())
	}
}

func TestBuiltinDurations(t *testing.T) {
	want := map[Instrument]float64{
		Piano: 1.5, Harmonium: 2, Sitar: 2, Santur: 1, Sarangi: 1.5, Sarod: 0.8,
	}
	for inst, d := range want {
		r, ok := RecipeFor(inst)
		require.True(t, ok)
		assert.Equal(t, d, r.Duration, inst.String())
	}
}

func TestRecipeForUnknownFallsBack(t *testing.T) {
	r, ok := RecipeFor(Instrument(99))
	assert.False(t, ok)
	assert.Equal(t, builtin[Piano], r)
}

func TestDefaultBookIsACopy(t *testing.T) {
	b := DefaultBook()
	b[Harmonium].Oscillators[1].DetuneHz = 100
	b[Sitar].Filter.Sweep[0].Ratio = 9

	assert.Equal(t, 2.0, builtin[Harmonium].Oscillators[1].DetuneHz)
	assert.Equal(t, 4.0, builtin[Sitar].Filter.Sweep[0].Ratio)
}

func TestRecipeValidateRejects(t *testing.T) {
	base := func() Recipe {
		r, _ := RecipeFor(Sitar)
		return r
	}
	tests := []struct {
		name   string
		mutate func(*Recipe)
	}{
		{"zero duration", func(r *Recipe) { r.Duration = 0 }},
		{"nan duration", func(r *Recipe) { r.Duration = math.NaN() }},
		{"no oscillators", func(r *Recipe) { r.Oscillators = nil }},
		{"bad waveform", func(r *Recipe) { r.Oscillators[0].Waveform = osc.Waveform(9) }},
		{"negative ratio", func(r *Recipe) { r.Oscillators[0].Ratio = -1 }},
		{"vibrato rate", func(r *Recipe) { r.Vibrato = &VibratoSpec{RateHz: 0, DepthHz: 1} }},
		{"no cutoff", func(r *Recipe) { r.Filter.CutoffRatio = 0 }},
		{"negative q", func(r *Recipe) { r.Filter.Q = -1 }},
		{"sweep order", func(r *Recipe) { r.Filter.Sweep[1].Time = 0.05 }},
		{"sweep ratio", func(r *Recipe) { r.Filter.Sweep[0].Ratio = 0 }},
		{"level range", func(r *Recipe) { r.Envelope.Points[0].Level = 1.2 }},
		{"start range", func(r *Recipe) { r.Envelope.Start = -0.1 }},
		{"past duration", func(r *Recipe) { r.Envelope.Points[0].Time = 3 }},
		{"bad shape", func(r *Recipe) { r.Envelope.Points[0].Shape = Shape(7) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base()
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidRecipe)
		})
	}
}

func TestLoadRecipes(t *testing.T) {
	const doc = `
sarod:
  duration: 0.5
  oscillators:
    - waveform: saw
    - waveform: sine
      ratio: 3
  filter: {type: highpass, cutoff_hz: 200}
  envelope:
    start: 0.8
    points:
      - {time: 0.05, level: 1, shape: lin}
      - {time: 0.5, level: 0, shape: exp}
`
	book, err := LoadRecipes(strings.NewReader(doc))
	require.NoError(t, err)
	require.Contains(t, book, Sarod)

	r := book[Sarod]
	assert.Equal(t, 0.5, r.Duration)
	assert.Equal(t, []OscillatorSpec{{Waveform: osc.Sawtooth}, {Waveform: osc.Sine, Ratio: 3}}, r.Oscillators)
	assert.Equal(t, &FilterSpec{Type: graph.Highpass, CutoffHz: 200}, r.Filter)
	assert.Equal(t, Exponential, r.Envelope.Points[1].Shape)
}

func TestLoadRecipesErrors(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"unknown inst": "banjo: {duration: 1, oscillators: [{waveform: sine}]}",
		"unknown key":  "piano: {duration: 1, wobble: 2, oscillators: [{waveform: sine}]}",
		"bad waveform": "piano: {duration: 1, oscillators: [{waveform: noise}]}",
		"invalid":      "piano: {duration: -1, oscillators: [{waveform: sine}]}",
		"bad shape":    "piano: {duration: 1, oscillators: [{waveform: sine}], envelope: {start: 1, points: [{time: 1, level: 0, shape: cubic}]}}",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadRecipes(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrInvalidRecipe)
		})
	}
}

func TestWriteRecipesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecipes(&buf, DefaultBook()))
	assert.Contains(t, buf.String(), "sarangi:")
	assert.Contains(t, buf.String(), "waveform: sawtooth")

	got, err := LoadRecipes(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultBook(), got)
}
