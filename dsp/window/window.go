// Package window generates the analysis windows used by the pitch estimator.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeBlackmanHarris4Term
)

// Generalized cosine terms: w(x) = sum a[k] cos(2*pi*k*x), x in [0, 1].
var cosineTerms = map[Type][]float64{
	TypeHann:                {0.5, -0.5},
	TypeBlackmanHarris4Term: {0.35875, -0.48829, 0.14128, -0.01168},
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic drops the closing sample so the window tiles for FFT framing.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns length coefficients of window t. Unknown types yield a
// rectangular window.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	span := length - 1
	if cfg.periodic {
		span = length
	}

	terms := cosineTerms[t]
	out := make([]float64, length)
	for n := range out {
		if terms == nil || span == 0 {
			out[n] = 1
			continue
		}
		phase := 2 * math.Pi * float64(n) / float64(span)
		for k, a := range terms {
			out[n] += a * math.Cos(float64(k)*phase)
		}
	}

	return out
}

// Apply multiplies buf in place by window t.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}
	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// CoherentGain is the mean coefficient: the factor by which a windowed
// sinusoid's spectral peak is scaled.
func CoherentGain(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	if sum == 0 {
		return 0, errZeroCoherentGain
	}

	return sum / float64(len(coeffs)), nil
}
