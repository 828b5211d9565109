package biquad

import "github.com/cwbudde/algo-synth/dsp/core"

// Coefficients of one second-order section, normalized so that a0 = 1.
//
// A Section runs them in Direct Form II Transposed:
//
//	y     = B0*x + z[0]
//	z[0]' = B1*x - A1*y + z[1]
//	z[1]' = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// IsZero reports whether c is all zeros. Designers return that for
// parameters they cannot realize.
func (c Coefficients) IsZero() bool {
	return c == Coefficients{}
}

// Section pairs Coefficients with a two-element delay line.
type Section struct {
	Coefficients

	z [2]float64
}

// NewSection returns a section with a cleared delay line.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// SetCoefficients swaps the coefficients in place. The delay line is kept so
// that per-sample parameter sweeps stay continuous.
func (s *Section) SetCoefficients(c Coefficients) {
	s.Coefficients = c
}

func (s *Section) step(x float64) float64 {
	c := &s.Coefficients
	y := c.B0*x + s.z[0]
	s.z[0] = core.FlushDenormals(c.B1*x - c.A1*y + s.z[1])
	s.z[1] = core.FlushDenormals(c.B2*x - c.A2*y)
	return y
}

// ProcessSample runs one sample through the section.
func (s *Section) ProcessSample(x float64) float64 {
	return s.step(x)
}

// ProcessBlock filters buf in place.
func (s *Section) ProcessBlock(buf []float64) {
	for i := range buf {
		buf[i] = s.step(buf[i])
	}
}

// Reset clears the delay line.
func (s *Section) Reset() {
	s.z = [2]float64{}
}

// State returns a copy of the delay line.
func (s *Section) State() [2]float64 {
	return s.z
}
