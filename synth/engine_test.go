package synth

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-synth/dsp/automation"
	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/graph"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

const testRate = 8000

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *graph.Context) {
	t.Helper()
	ctx := graph.NewContext(core.WithSampleRate(testRate))
	log, _ := testLogger()
	e, err := NewEngine(ctx, append([]Option{WithLogger(log)}, opts...)...)
	require.NoError(t, err)
	return e, ctx
}

func waveforms(v *Voice) []osc.Waveform {
	var out []osc.Waveform
	for _, o := range v.Oscillators() {
		out = append(out, o.Type())
	}
	return out
}

func frequencies(v *Voice) []float64 {
	var out []float64
	for _, o := range v.Oscillators() {
		out = append(out, o.Frequency().Value())
	}
	return out
}

func TestTriggerStopEqualsStartPlusDuration(t *testing.T) {
	e, ctx := newTestEngine(t)
	ctx.Render(make([]float32, 333))

	for _, inst := range Instruments() {
		v, err := e.Trigger(MustParseNote("A4"), Settings{Instrument: inst, Volume: 0.5})
		require.NoError(t, err, inst.String())

		r, _ := RecipeFor(inst)
		assert.Equal(t, ctx.CurrentTime(), v.Start(), inst.String())
		assert.Equal(t, v.Start()+r.Duration, v.Stop(), inst.String())

		for _, o := range v.Oscillators() {
			start, _ := o.StartTime()
			stop, ok := o.StopTime()
			require.True(t, ok)
			assert.Equal(t, v.Start(), start)
			assert.Equal(t, v.Stop(), stop)
		}
	}
}

func TestRecipeGraphs(t *testing.T) {
	e, _ := newTestEngine(t)
	a4 := MustParseNote("A4")
	trigger := func(inst Instrument) *Voice {
		v, err := e.Trigger(a4, Settings{Instrument: inst, Volume: 0.5})
		require.NoError(t, err)
		return v
	}

	t.Run("piano", func(t *testing.T) {
		v := trigger(Piano)
		assert.Equal(t, []osc.Waveform{osc.Triangle}, waveforms(v))
		assert.Nil(t, v.Filter())
		assert.Equal(t, []automation.Event{
			{Kind: automation.KindSet, Time: 0, Value: 0.5},
			{Kind: automation.KindExponentialRamp, Time: 1.5, Value: 0.005},
		}, v.Gain().Gain().Events())
	})

	t.Run("harmonium", func(t *testing.T) {
		v := trigger(Harmonium)
		assert.Equal(t, []osc.Waveform{osc.Sawtooth, osc.Sawtooth}, waveforms(v))
		assert.Equal(t, []float64{440, 442}, frequencies(v))
		require.NotNil(t, v.Filter())
		assert.Equal(t, graph.Lowpass, v.Filter().Type())
		assert.Equal(t, 2000.0, v.Filter().Frequency().Value())
		assert.Equal(t, []automation.Event{
			{Kind: automation.KindSet, Time: 0, Value: 0.5},
			{Kind: automation.KindLinearRamp, Time: 2, Value: 0},
		}, v.Gain().Gain().Events())
	})

	t.Run("sitar", func(t *testing.T) {
		v := trigger(Sitar)
		assert.Equal(t, []osc.Waveform{osc.Sawtooth}, waveforms(v))
		f := v.Filter()
		require.NotNil(t, f)
		assert.Equal(t, 5.0, f.Q().Value())
		assert.Equal(t, []automation.Event{
			{Kind: automation.KindSet, Time: 0, Value: 440},
			{Kind: automation.KindExponentialRamp, Time: 0.1, Value: 1760},
			{Kind: automation.KindExponentialRamp, Time: 1, Value: 440},
		}, f.Frequency().Events())
		assert.InDelta(t, 0.005, v.GainAt(2), 1e-12)
	})

	t.Run("santur", func(t *testing.T) {
		v := trigger(Santur)
		assert.Equal(t, []osc.Waveform{osc.Triangle, osc.Sine}, waveforms(v))
		assert.Equal(t, []float64{440, 880}, frequencies(v))
		assert.Nil(t, v.Filter())
		assert.InDelta(t, 0.005, v.GainAt(1), 1e-12)
	})

	t.Run("sarangi", func(t *testing.T) {
		v := trigger(Sarangi)
		assert.Equal(t, []osc.Waveform{osc.Sawtooth}, waveforms(v))
		lfo, depth := v.Vibrato()
		require.NotNil(t, lfo)
		require.NotNil(t, depth)
		assert.Equal(t, osc.Sine, lfo.Type())
		assert.Equal(t, 5.0, lfo.Frequency().Value())
		assert.Equal(t, 5.0, depth.Gain().Value())
		assert.Equal(t, 1, v.Oscillators()[0].Frequency().Modulators())
		assert.Equal(t, 3000.0, v.Filter().Frequency().Value())

		stop, ok := lfo.StopTime()
		require.True(t, ok)
		assert.Equal(t, v.Stop(), stop)

		assert.Equal(t, 0.0, v.GainAt(0))
		assert.InDelta(t, 0.5, v.GainAt(0.2), 1e-12)
		assert.InDelta(t, 0.25, v.GainAt(0.85), 1e-12)
		assert.Equal(t, 0.0, v.GainAt(1.5))
	})

	t.Run("sarod", func(t *testing.T) {
		v := trigger(Sarod)
		assert.Equal(t, []osc.Waveform{osc.Triangle}, waveforms(v))
		assert.Equal(t, 1000.0, v.Filter().Frequency().Value())
		assert.Equal(t, 0.8, v.Stop()-v.Start())
	})
}

func TestExponentialFloorNeverZero(t *testing.T) {
	e, _ := newTestEngine(t)
	for _, inst := range []Instrument{Piano, Sitar, Santur, Sarod} {
		v, err := e.Trigger(MustParseNote("C3"), Settings{Instrument: inst, Volume: 0.8})
		require.NoError(t, err)
		for _, ev := range v.Gain().Gain().Events() {
			if ev.Kind == automation.KindExponentialRamp {
				assert.InDelta(t, DecayFloor*0.8, ev.Value, 1e-12, inst.String())
			}
		}
	}
}

func TestRapidTriggersAreIndependent(t *testing.T) {
	e, ctx := newTestEngine(t)

	v1, err := e.Trigger(MustParseNote("C4"), Settings{Instrument: Piano, Volume: 0.6})
	require.NoError(t, err)
	before := v1.Gain().Gain().Events()

	ctx.Render(make([]float32, 40))

	v2, err := e.Trigger(MustParseNote("C4"), Settings{Instrument: Harmonium, Volume: 0.3})
	require.NoError(t, err)

	assert.NotSame(t, v1.Gain(), v2.Gain())
	assert.Equal(t, before, v1.Gain().Gain().Events())
	assert.Greater(t, v2.Start(), v1.Start())
	assert.Equal(t, 2, e.ActiveVoices())

	for _, tt := range []float64{0, 0.3, 1, 1.4} {
		want := 0.6 * math.Pow(DecayFloor, tt/1.5)
		assert.InDelta(t, want, v1.GainAt(v1.Start()+tt), 1e-9)
	}
}

func TestZeroVolumeIsSilent(t *testing.T) {
	e, ctx := newTestEngine(t)

	for _, inst := range Instruments() {
		v, err := e.Trigger(MustParseNote("E4"), Settings{Instrument: inst, Volume: 0})
		require.NoError(t, err)
		assert.Equal(t, 0.0, v.PeakGain(), inst.String())
		for _, ev := range v.Gain().Gain().Events() {
			assert.NotEqual(t, automation.KindExponentialRamp, ev.Kind)
		}
	}

	out := ctx.RenderSeconds(0.5)
	for i, s := range out {
		require.Zero(t, s, "sample %d", i)
	}
}

func TestPeakGainTracksVolume(t *testing.T) {
	e, _ := newTestEngine(t)
	for _, inst := range Instruments() {
		v, err := e.Trigger(MustParseNote("G4"), Settings{Instrument: inst, Volume: 0.7})
		require.NoError(t, err)
		assert.InDelta(t, 0.7, v.PeakGain(), 1e-12, inst.String())
	}
}

func TestVoicesFreeThemselves(t *testing.T) {
	e, ctx := newTestEngine(t)

	v, err := e.Trigger(MustParseNote("A4"), Settings{Instrument: Sarangi, Volume: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, ctx.NodeCount())
	assert.False(t, v.Ended())

	ctx.RenderSeconds(1)
	assert.Equal(t, 1, e.ActiveVoices())

	ctx.RenderSeconds(0.6)
	select {
	case <-v.Done():
	default:
		t.Fatal("voice not done after its duration")
	}
	assert.Equal(t, 0, e.ActiveVoices())
	assert.Equal(t, 0, ctx.NodeCount())
	assert.Equal(t, 0, ctx.Destination().Inputs())
}

func TestPolyphonyIsUnbounded(t *testing.T) {
	e, ctx := newTestEngine(t)
	for i := range 200 {
		_, err := e.Trigger(NoteFromMIDI(40+i%40), Settings{Instrument: Santur, Volume: 0.1})
		require.NoError(t, err)
	}
	assert.Equal(t, 200, e.ActiveVoices())
	assert.Equal(t, 400, ctx.ActiveSources())

	ctx.RenderSeconds(1.1)
	assert.Equal(t, 0, e.ActiveVoices())
	assert.Equal(t, 0, ctx.NodeCount())
}

func TestInvalidInputsCreateNothing(t *testing.T) {
	e, ctx := newTestEngine(t)

	_, err := e.TriggerName("H9", DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidNote)

	_, err = e.Trigger(Note{Class: 13, Octave: 4}, DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidNote)

	_, err = e.Trigger(MustParseNote("A4"), Settings{Instrument: Piano, Volume: math.Inf(1)})
	assert.ErrorIs(t, err, ErrInvalidVolume)

	assert.Equal(t, 0, ctx.NodeCount())
	assert.Equal(t, 0, e.ActiveVoices())
}

func TestUnknownInstrumentFallsBack(t *testing.T) {
	ctx := graph.NewContext(core.WithSampleRate(testRate))
	log, buf := testLogger()
	e, err := NewEngine(ctx, WithLogger(log))
	require.NoError(t, err)

	v, err := e.Trigger(MustParseNote("A4"), Settings{Instrument: Instrument(77), Volume: 0.5})
	require.NoError(t, err)
	assert.Equal(t, Piano, v.Instrument())
	assert.Contains(t, buf.String(), "falling back")
}

func TestVolumeIsClamped(t *testing.T) {
	e, _ := newTestEngine(t)
	v, err := e.Trigger(MustParseNote("A4"), Settings{Instrument: Piano, Volume: 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.Volume())
	assert.Equal(t, 1.0, v.PeakGain())
}

func TestSuspendedDrop(t *testing.T) {
	e, ctx := newTestEngine(t)
	require.NoError(t, ctx.Suspend())

	v, err := e.Trigger(MustParseNote("A4"), DefaultSettings())
	assert.Nil(t, v)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.NotErrorIs(t, err, ErrTriggerDeferred)
	assert.Equal(t, 0, ctx.NodeCount())

	require.NoError(t, ctx.Resume())
	assert.Equal(t, 0, e.ActiveVoices())
}

func TestSuspendedQueueReplaysOnResume(t *testing.T) {
	e, ctx := newTestEngine(t, WithSuspendPolicy(QueueWhenSuspended), WithQueueLimit(2))
	require.NoError(t, ctx.Suspend())

	for _, n := range []string{"C4", "D4", "E4"} {
		_, err := e.TriggerName(n, DefaultSettings())
		assert.ErrorIs(t, err, ErrTriggerDeferred)
		assert.ErrorIs(t, err, ErrBackendUnavailable)
	}
	assert.Equal(t, 2, e.Pending())
	assert.Equal(t, 0, ctx.NodeCount())

	require.NoError(t, ctx.Resume())
	assert.Equal(t, 0, e.Pending())
	assert.Equal(t, 2, e.ActiveVoices())
	assert.Equal(t, 2, ctx.ActiveSources())
}

func TestClosedContextDropsQueue(t *testing.T) {
	e, ctx := newTestEngine(t, WithSuspendPolicy(QueueWhenSuspended))
	require.NoError(t, ctx.Suspend())
	_, _ = e.TriggerName("A4", DefaultSettings())
	require.Equal(t, 1, e.Pending())

	require.NoError(t, ctx.Close())
	assert.Equal(t, 0, e.Pending())

	_, err := e.TriggerName("A4", DefaultSettings())
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.NotErrorIs(t, err, ErrTriggerDeferred)
}

func TestWithRecipesOverrideAndValidation(t *testing.T) {
	custom, _ := RecipeFor(Piano)
	custom.Duration = 0.25
	custom.Envelope.Points[0].Time = 0.25

	e, _ := newTestEngine(t, WithRecipes(Book{Piano: custom}))
	v, err := e.TriggerName("A4", DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, v.Start()+0.25, v.Stop())
	assert.Equal(t, 2.0, e.Recipe(Harmonium).Duration)

	bad := custom
	bad.Oscillators = nil
	_, err = NewEngine(graph.NewContext(), WithRecipes(Book{Piano: bad}))
	assert.ErrorIs(t, err, ErrInvalidRecipe)

	_, err = NewEngine(nil)
	assert.Error(t, err)
}

func TestCloseEndsSoundingVoices(t *testing.T) {
	e, ctx := newTestEngine(t)

	var voices []*Voice
	for _, inst := range Instruments() {
		v, err := e.Trigger(MustParseNote("A4"), Settings{Instrument: inst, Volume: 0.5})
		require.NoError(t, err, inst.String())
		voices = append(voices, v)
	}
	ctx.RenderSeconds(0.1)
	require.Equal(t, len(voices), e.ActiveVoices())

	require.NoError(t, ctx.Close())

	for _, v := range voices {
		select {
		case <-v.Done():
		case <-time.After(time.Second):
			t.Fatalf("%s voice still open after Close", v.Instrument())
		}
	}
	assert.Equal(t, 0, e.ActiveVoices())
	assert.Equal(t, 0, ctx.ActiveSources())

	_, err := e.TriggerName("A4", DefaultSettings())
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, 0, e.ActiveVoices())
}

func TestFailedBuildLeavesNoNodes(t *testing.T) {
	broken, _ := RecipeFor(Harmonium)
	broken.Oscillators = []OscillatorSpec{
		{Waveform: osc.Sawtooth},
		{Waveform: osc.Sine, Ratio: math.MaxFloat64},
	}
	require.NoError(t, broken.Validate())

	e, ctx := newTestEngine(t, WithRecipes(Book{Harmonium: broken}))
	_, err := e.Trigger(MustParseNote("A4"), Settings{Instrument: Harmonium, Volume: 0.5})
	require.ErrorIs(t, err, automation.ErrInvalidValue)

	assert.Equal(t, 0, ctx.NodeCount())
	assert.Equal(t, 0, ctx.Destination().Inputs())
	assert.Equal(t, 0, e.ActiveVoices())

	v, err := e.Trigger(MustParseNote("A4"), Settings{Instrument: Piano, Volume: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, e.ActiveVoices())
	ctx.RenderSeconds(v.Stop() + 0.1)
	assert.True(t, v.Ended())
	assert.Equal(t, 0, e.ActiveVoices())
}
