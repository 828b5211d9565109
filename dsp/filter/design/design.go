package design

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
)

// DefaultQ is the Butterworth quality factor.
const DefaultQ = 1 / math.Sqrt2

// maxNyquistFraction keeps designed cutoffs strictly below Nyquist.
const maxNyquistFraction = 0.4999

// cookbook holds the terms shared by every RBJ second-order design: the
// cosine and sine of the normalized angular frequency and alpha.
type cookbook struct {
	cos, sin, alpha float64
}

func prepare(freq, q, sampleRate float64) (cookbook, bool) {
	if !finitePositive(sampleRate) || !finitePositive(freq) || freq >= sampleRate/2 {
		return cookbook{}, false
	}
	if !finitePositive(q) {
		q = DefaultQ
	}
	w := 2 * math.Pi * freq / sampleRate
	sin, cos := math.Sincos(w)
	return cookbook{cos: cos, sin: sin, alpha: sin / (2 * q)}, true
}

// section divides the numerator and the shared all-pole denominator by a0.
func (c cookbook) section(b0, b1, b2 float64) biquad.Coefficients {
	inv := 1 / (1 + c.alpha)
	return biquad.Coefficients{
		B0: b0 * inv,
		B1: b1 * inv,
		B2: b2 * inv,
		A1: -2 * c.cos * inv,
		A2: (1 - c.alpha) * inv,
	}
}

// Lowpass designs a lowpass at freq (Hz). The gain at freq equals q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	c, ok := prepare(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	b := (1 - c.cos) / 2
	return c.section(b, 2*b, b)
}

// Highpass designs a highpass at freq (Hz). The gain at freq equals q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	c, ok := prepare(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	b := (1 + c.cos) / 2
	return c.section(b, -2*b, b)
}

// Bandpass designs a bandpass centred on freq (Hz) with 0 dB peak gain and
// bandwidth freq/q.
func Bandpass(freq, q, sampleRate float64) biquad.Coefficients {
	c, ok := prepare(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	return c.section(c.alpha, 0, -c.alpha)
}

// ClampFrequency limits freq to the open interval the designers accept.
// Automated cutoffs may wander outside it.
func ClampFrequency(freq, sampleRate float64) float64 {
	const minHz = 1e-3
	if math.IsNaN(freq) || freq < minHz {
		return minHz
	}
	return math.Min(freq, sampleRate*maxNyquistFraction)
}

func finitePositive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}
