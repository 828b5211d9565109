package testutil

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/osc"
)

func TestDeterministicSine(t *testing.T) {
	x := DeterministicSine(1000, 8000, 0.5, 8)
	want := []float64{0, 0.5 * math.Sqrt2 / 2, 0.5, 0.5 * math.Sqrt2 / 2, 0, -0.5 * math.Sqrt2 / 2, -0.5, -0.5 * math.Sqrt2 / 2}
	if d, err := MaxAbsDiff(x, want); err != nil || d > 1e-12 {
		t.Fatalf("diff %v err %v", d, err)
	}
}

func TestToneMatchesSine(t *testing.T) {
	a := Tone(osc.Sine, 440, 48000, 256)
	b := DeterministicSine(440, 48000, 1, 256)
	if d, _ := MaxAbsDiff(a, b); d > 1e-9 {
		t.Fatalf("sine tone differs by %v", d)
	}
}

func TestMixPadsShorter(t *testing.T) {
	got := Mix([]float64{1, 2, 3}, []float64{10})
	want := []float64{11, 2, 3}
	if d, err := MaxAbsDiff(got, want); err != nil || d != 0 {
		t.Fatalf("Mix = %v", got)
	}
}

func TestFloatConversions(t *testing.T) {
	x := []float64{0.25, -1, 0.5}
	back := Float64s(Float32s(x))
	RequireRendered(t, Float32s(x), back, 0)
	RequireFinite(t, Float32s(x))
	RequireSilent(t, make([]float32, 4))
}
