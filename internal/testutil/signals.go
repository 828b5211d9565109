// Package testutil holds signal generators and tolerance checks shared by
// the rendering and analysis tests.
package testutil

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp/osc"
)

// DeterministicSine generates a sine wave starting at phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Tone renders length samples of waveform w through the band-limited
// oscillator core.
func Tone(w osc.Waveform, freqHz, sampleRate float64, length int) []float64 {
	out := make([]float64, length)
	var ph osc.Phasor
	for i := range out {
		p, dt := ph.Next(freqHz, sampleRate)
		out[i] = osc.Value(w, p, dt)
	}
	return out
}

// Mix sums signals sample by sample. The result has the longest length.
func Mix(signals ...[]float64) []float64 {
	n := 0
	for _, s := range signals {
		n = max(n, len(s))
	}
	out := make([]float64, n)
	for _, s := range signals {
		for i, v := range s {
			out[i] += v
		}
	}
	return out
}

// Float32s narrows x to float32 as rendered by the graph.
func Float32s(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}

// Float64s widens rendered output for analysis.
func Float64s(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}
