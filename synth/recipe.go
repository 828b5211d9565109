package synth

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/graph"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

// DecayFloor is the lowest level, relative to volume, an exponential
// segment may target.
const DecayFloor = 0.01

// Shape is the interpolation of an envelope segment.
type Shape int

const (
	Linear Shape = iota
	Exponential
)

func (s Shape) String() string {
	if s == Exponential {
		return "exponential"
	}
	return "linear"
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "linear", "lin":
		*s = Linear
	case "exponential", "exp":
		*s = Exponential
	default:
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidRecipe, text)
	}
	return nil
}

// OscillatorSpec describes one oscillator. Its frequency is
// note frequency * Ratio + DetuneHz.
type OscillatorSpec struct {
	Waveform osc.Waveform `yaml:"waveform"`
	Ratio    float64      `yaml:"ratio,omitempty"`
	DetuneHz float64      `yaml:"detune_hz,omitempty"`
}

// VibratoSpec is a sine LFO added to every oscillator's frequency.
type VibratoSpec struct {
	RateHz  float64 `yaml:"rate_hz"`
	DepthHz float64 `yaml:"depth_hz"`
}

// SweepPoint is an exponential cutoff move to Ratio * note frequency,
// reached Time seconds after the trigger.
type SweepPoint struct {
	Time  float64 `yaml:"time"`
	Ratio float64 `yaml:"ratio"`
}

// FilterSpec describes the voice filter. The cutoff is CutoffHz, or
// CutoffRatio * note frequency when CutoffHz is 0. Q is in dB for lowpass
// and highpass, linear for bandpass; Q 0 keeps the backend default.
type FilterSpec struct {
	Type        graph.FilterType `yaml:"type"`
	CutoffHz    float64          `yaml:"cutoff_hz,omitempty"`
	CutoffRatio float64          `yaml:"cutoff_ratio,omitempty"`
	Q           float64          `yaml:"q,omitempty"`
	Sweep       []SweepPoint     `yaml:"sweep,omitempty"`
}

// Breakpoint ends an envelope segment at Level (relative to volume) Time
// seconds after the trigger. Exponential segments never go below
// DecayFloor.
type Breakpoint struct {
	Time  float64 `yaml:"time"`
	Level float64 `yaml:"level"`
	Shape Shape   `yaml:"shape"`
}

// EnvelopeSpec is the gain curve of a voice.
type EnvelopeSpec struct {
	Start  float64      `yaml:"start"`
	Points []Breakpoint `yaml:"points"`
}

// Recipe is the static description of an instrument's voice.
type Recipe struct {
	Oscillators []OscillatorSpec `yaml:"oscillators"`
	Vibrato     *VibratoSpec     `yaml:"vibrato,omitempty"`
	Filter      *FilterSpec      `yaml:"filter,omitempty"`
	Envelope    EnvelopeSpec     `yaml:"envelope"`
	Duration    float64          `yaml:"duration"`
}

// Book maps instruments to recipes.
type Book map[Instrument]Recipe

var builtin = Book{
	Piano: {
		Oscillators: []OscillatorSpec{{Waveform: osc.Triangle}},
		Envelope:    decay(1.5, Exponential),
		Duration:    1.5,
	},
	Harmonium: {
		Oscillators: []OscillatorSpec{
			{Waveform: osc.Sawtooth},
			{Waveform: osc.Sawtooth, DetuneHz: 2},
		},
		Filter:   &FilterSpec{Type: graph.Lowpass, CutoffHz: 2000},
		Envelope: decay(2, Linear),
		Duration: 2,
	},
	Sitar: {
		Oscillators: []OscillatorSpec{{Waveform: osc.Sawtooth}},
		Filter: &FilterSpec{
			Type:        graph.Lowpass,
			CutoffRatio: 1,
			Q:           5,
			Sweep:       []SweepPoint{{Time: 0.1, Ratio: 4}, {Time: 1, Ratio: 1}},
		},
		Envelope: decay(2, Exponential),
		Duration: 2,
	},
	Santur: {
		Oscillators: []OscillatorSpec{
			{Waveform: osc.Triangle},
			{Waveform: osc.Sine, Ratio: 2},
		},
		Envelope: decay(1, Exponential),
		Duration: 1,
	},
	Sarangi: {
		Oscillators: []OscillatorSpec{{Waveform: osc.Sawtooth}},
		Vibrato:     &VibratoSpec{RateHz: 5, DepthHz: 5},
		Filter:      &FilterSpec{Type: graph.Lowpass, CutoffHz: 3000},
		Envelope: EnvelopeSpec{
			Start: 0,
			Points: []Breakpoint{
				{Time: 0.2, Level: 1, Shape: Linear},
				{Time: 1.5, Level: 0, Shape: Linear},
			},
		},
		Duration: 1.5,
	},
	Sarod: {
		Oscillators: []OscillatorSpec{{Waveform: osc.Triangle}},
		Filter:      &FilterSpec{Type: graph.Lowpass, CutoffHz: 1000},
		Envelope:    decay(0.8, Exponential),
		Duration:    0.8,
	},
}

func decay(end float64, shape Shape) EnvelopeSpec {
	return EnvelopeSpec{Start: 1, Points: []Breakpoint{{Time: end, Level: 0, Shape: shape}}}
}

// DefaultBook returns a deep copy of the built-in recipes.
func DefaultBook() Book {
	out := make(Book, len(builtin))
	for inst, r := range builtin {
		out[inst] = r.clone()
	}
	return out
}

// RecipeFor returns the built-in recipe. Unknown instruments get the
// DefaultInstrument recipe and false.
func RecipeFor(inst Instrument) (Recipe, bool) {
	r, ok := builtin[inst]
	if !ok {
		return builtin[DefaultInstrument].clone(), false
	}
	return r.clone(), true
}

func (r Recipe) clone() Recipe {
	c := r
	c.Oscillators = append([]OscillatorSpec(nil), r.Oscillators...)
	c.Envelope.Points = append([]Breakpoint(nil), r.Envelope.Points...)
	if r.Vibrato != nil {
		v := *r.Vibrato
		c.Vibrato = &v
	}
	if r.Filter != nil {
		f := *r.Filter
		f.Sweep = append([]SweepPoint(nil), r.Filter.Sweep...)
		c.Filter = &f
	}
	return c
}

// Validate checks the recipe for values the voice builder cannot schedule.
func (r Recipe) Validate() error {
	if !positive(r.Duration) {
		return fmt.Errorf("%w: duration must be > 0: %v", ErrInvalidRecipe, r.Duration)
	}
	if len(r.Oscillators) == 0 {
		return fmt.Errorf("%w: at least one oscillator required", ErrInvalidRecipe)
	}
	for i, o := range r.Oscillators {
		if !o.Waveform.Valid() {
			return fmt.Errorf("%w: oscillator %d: waveform %v", ErrInvalidRecipe, i, o.Waveform)
		}
		if !core.IsFinite(o.Ratio) || o.Ratio < 0 || !core.IsFinite(o.DetuneHz) {
			return fmt.Errorf("%w: oscillator %d: ratio %v detune %v", ErrInvalidRecipe, i, o.Ratio, o.DetuneHz)
		}
	}

	if v := r.Vibrato; v != nil {
		if !positive(v.RateHz) || !core.IsFinite(v.DepthHz) || v.DepthHz < 0 {
			return fmt.Errorf("%w: vibrato rate %v depth %v", ErrInvalidRecipe, v.RateHz, v.DepthHz)
		}
	}

	if f := r.Filter; f != nil {
		if err := f.validate(r.Duration); err != nil {
			return err
		}
	}

	return r.Envelope.validate(r.Duration)
}

func (f *FilterSpec) validate(duration float64) error {
	switch {
	case !core.IsFinite(f.CutoffHz) || f.CutoffHz < 0:
		return fmt.Errorf("%w: filter cutoff %v", ErrInvalidRecipe, f.CutoffHz)
	case !core.IsFinite(f.CutoffRatio) || f.CutoffRatio < 0:
		return fmt.Errorf("%w: filter cutoff ratio %v", ErrInvalidRecipe, f.CutoffRatio)
	case f.CutoffHz == 0 && f.CutoffRatio == 0:
		return fmt.Errorf("%w: filter needs cutoff_hz or cutoff_ratio", ErrInvalidRecipe)
	case !core.IsFinite(f.Q) || f.Q < 0:
		return fmt.Errorf("%w: filter Q %v", ErrInvalidRecipe, f.Q)
	}

	prev := 0.0
	for i, p := range f.Sweep {
		if !positive(p.Ratio) {
			return fmt.Errorf("%w: sweep %d: ratio must be > 0", ErrInvalidRecipe, i)
		}
		if !core.IsFinite(p.Time) || p.Time < prev || p.Time > duration {
			return fmt.Errorf("%w: sweep %d: time %v out of order or past duration", ErrInvalidRecipe, i, p.Time)
		}
		prev = p.Time
	}
	return nil
}

func (e EnvelopeSpec) validate(duration float64) error {
	if !unit(e.Start) {
		return fmt.Errorf("%w: envelope start %v not in [0, 1]", ErrInvalidRecipe, e.Start)
	}
	prev := 0.0
	for i, p := range e.Points {
		if !unit(p.Level) {
			return fmt.Errorf("%w: breakpoint %d: level %v not in [0, 1]", ErrInvalidRecipe, i, p.Level)
		}
		if !core.IsFinite(p.Time) || p.Time < prev || p.Time > duration {
			return fmt.Errorf("%w: breakpoint %d: time %v out of order or past duration", ErrInvalidRecipe, i, p.Time)
		}
		if p.Shape != Linear && p.Shape != Exponential {
			return fmt.Errorf("%w: breakpoint %d: shape %d", ErrInvalidRecipe, i, int(p.Shape))
		}
		prev = p.Time
	}
	return nil
}

func positive(v float64) bool {
	return core.IsFinite(v) && v > 0
}

func unit(v float64) bool {
	return core.IsFinite(v) && v >= 0 && v <= 1
}
