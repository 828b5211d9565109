package core

import "math"

// denormalFloor is the magnitude below which filter state is flushed.
const denormalFloor = 1e-30

// Clamp limits value to [lo, hi]. Swapped bounds are reordered.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Max(lo, math.Min(hi, value))
}

// FlushDenormals returns 0 for values too small to matter, so decaying
// feedback paths settle to exact silence.
func FlushDenormals(x float64) float64 {
	if math.Abs(x) < denormalFloor {
		return 0
	}
	return x
}

// SemitoneRatio returns the equal-tempered frequency ratio of n semitones.
func SemitoneRatio(n float64) float64 {
	return math.Exp2(n / 12)
}

// CentsRatio returns the frequency ratio of c cents.
func CentsRatio(c float64) float64 {
	return math.Exp2(c / 1200)
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// DBToLinear converts decibels to an amplitude ratio.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts an amplitude to dBFS: -Inf for 0, NaN below 0.
func LinearToDB(linear float64) float64 {
	switch {
	case linear < 0:
		return math.NaN()
	case linear == 0:
		return math.Inf(-1)
	}
	return 20 * math.Log10(linear)
}
