package osc

import (
	"fmt"
	"math"
	"strings"
)

// Waveform selects an oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Sawtooth
	Square
)

var waveformNames = [...]string{
	Sine:     "sine",
	Triangle: "triangle",
	Sawtooth: "sawtooth",
	Square:   "square",
}

// Valid reports whether w is a declared waveform.
func (w Waveform) Valid() bool {
	return w >= 0 && int(w) < len(waveformNames)
}

func (w Waveform) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// ParseWaveform resolves a waveform name. "saw" is accepted for sawtooth.
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine":
		return Sine, nil
	case "triangle":
		return Triangle, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	case "square":
		return Square, nil
	default:
		return 0, fmt.Errorf("unsupported waveform: %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (w Waveform) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("unsupported waveform: %d", int(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Waveform) UnmarshalText(text []byte) error {
	v, err := ParseWaveform(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Value returns the waveform at phase. dt is the phase increment per sample
// (frequency / sample rate); pass 0 for the naive, aliasing shape.
func Value(w Waveform, phase, dt float64) float64 {
	phase = Wrap(phase)
	dt = math.Abs(dt)
	if dt > 0.5 {
		dt = 0.5
	}

	switch w {
	case Triangle:
		switch {
		case phase < 0.25:
			return 4 * phase
		case phase < 0.75:
			return 2 - 4*phase
		default:
			return 4*phase - 4
		}
	case Sawtooth:
		t := Wrap(phase + 0.5)
		return 2*t - 1 - polyBLEP(t, dt)
	case Square:
		v := -1.0
		if phase < 0.5 {
			v = 1
		}
		return v + polyBLEP(phase, dt) - polyBLEP(Wrap(phase+0.5), dt)
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// Wrap folds phase into [0, 1).
func Wrap(phase float64) float64 {
	phase -= math.Floor(phase)
	if phase >= 1 {
		phase = 0
	}
	return phase
}

// polyBLEP is the two-sample polynomial residual of a unit step at t=0.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	switch {
	case t < dt:
		x := t / dt
		return x + x - x*x - 1
	case t > 1-dt:
		x := (t - 1) / dt
		return x*x + x + x + 1
	default:
		return 0
	}
}
