package biquad

import (
	"math"
	"math/cmplx"
)

// Response evaluates H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
// on the unit circle at freqHz.
func (c *Coefficients) Response(freqHz, sampleRate float64) complex128 {
	zinv := cmplx.Rect(1, -2*math.Pi*freqHz/sampleRate)

	// Horner form in z^-1.
	num := (complex(c.B2, 0)*zinv+complex(c.B1, 0))*zinv + complex(c.B0, 0)
	den := (complex(c.A2, 0)*zinv+complex(c.A1, 0))*zinv + 1
	return num / den
}

// MagnitudeDB returns |H| at freqHz in decibels.
func (c *Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz, sampleRate)))
}
