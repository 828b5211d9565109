package graph

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
	"github.com/cwbudde/algo-synth/dsp/filter/design"
)

// FilterType selects the biquad response.
type FilterType int

const (
	Lowpass FilterType = iota
	Highpass
	Bandpass
)

var filterNames = [...]string{"lowpass", "highpass", "bandpass"}

func (t FilterType) String() string {
	if t < 0 || int(t) >= len(filterNames) {
		return fmt.Sprintf("FilterType(%d)", int(t))
	}
	return filterNames[t]
}

// ParseFilterType parses a filter type name.
func ParseFilterType(name string) (FilterType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range filterNames {
		if s == n {
			return FilterType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown filter type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t FilterType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *FilterType) UnmarshalText(text []byte) error {
	v, err := ParseFilterType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// BiquadFilter is a second-order filter with automatable cutoff and Q.
// Coefficients are redesigned whenever either parameter changes.
type BiquadFilter struct {
	nodeBase

	typ       FilterType
	frequency *Param
	q         *Param
	section   *biquad.Section

	lastFreq, lastQ float64
	designed        bool
}

// NewBiquadFilter creates a filter at 350 Hz with Q 1.
func (c *Context) NewBiquadFilter(t FilterType) (*BiquadFilter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := &BiquadFilter{typ: t, section: biquad.NewSection(biquad.Coefficients{})}
	f.init(c, kindBiquad, f)
	f.frequency = newParam(&f.nodeBase, "frequency", 350, 0, c.cfg.Nyquist())
	f.q = newParam(&f.nodeBase, "Q", 1, -770.63678, 770.63678)
	if err := c.add(&f.nodeBase); err != nil {
		return nil, err
	}
	return f, nil
}

// Type returns the response type.
func (f *BiquadFilter) Type() FilterType {
	f.ctx.mu.Lock()
	defer f.ctx.mu.Unlock()
	return f.typ
}

// SetType changes the response type.
func (f *BiquadFilter) SetType(t FilterType) {
	f.ctx.mu.Lock()
	f.typ = t
	f.designed = false
	f.ctx.mu.Unlock()
}

// Frequency returns the cutoff (or center) frequency parameter in Hz.
func (f *BiquadFilter) Frequency() *Param {
	return f.frequency
}

// Q returns the resonance parameter. As in Web Audio, lowpass and highpass
// read it in dB (the gain at the cutoff) and bandpass as a linear quality
// factor.
func (f *BiquadFilter) Q() *Param {
	return f.q
}

func (f *BiquadFilter) process(frame0 int64, n int) {
	out := f.out[:n]
	mixInputs(out, f.inputs)

	freq := f.frequency.fill(frame0, n)
	q := f.q.fill(frame0, n)
	for i, x := range out {
		f.redesign(freq[i], q[i])
		out[i] = f.section.ProcessSample(x)
	}
}

func (f *BiquadFilter) redesign(freq, q float64) {
	if f.designed && freq == f.lastFreq && q == f.lastQ {
		return
	}
	f.lastFreq, f.lastQ, f.designed = freq, q, true

	f.section.SetCoefficients(coefficients(f.typ, freq, q, f.ctx.cfg.SampleRate))
}

func coefficients(t FilterType, freq, q, sr float64) biquad.Coefficients {
	freq = design.ClampFrequency(freq, sr)
	switch t {
	case Highpass:
		return design.Highpass(freq, core.DBToLinear(q), sr)
	case Bandpass:
		return design.Bandpass(freq, q, sr)
	default:
		return design.Lowpass(freq, core.DBToLinear(q), sr)
	}
}

// FrequencyResponseDB returns the magnitude response in dB at freqs for
// the parameter values scheduled at time t. Modulation inputs are not
// included.
func (f *BiquadFilter) FrequencyResponseDB(freqs []float64, t float64) []float64 {
	c := coefficients(f.Type(), f.frequency.ValueAt(t), f.q.ValueAt(t), f.ctx.cfg.SampleRate)
	out := make([]float64, len(freqs))
	for i, hz := range freqs {
		out[i] = c.MagnitudeDB(hz, f.ctx.cfg.SampleRate)
	}
	return out
}

func (f *BiquadFilter) finished() bool {
	return f.processorDone()
}
