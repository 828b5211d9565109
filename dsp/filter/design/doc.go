// Package design provides RBJ-style biquad coefficient designers.
//
// The functions in this package produce coefficients consumable by
// dsp/filter/biquad. Out-of-range input (non-positive frequency, frequency at
// or above Nyquist, invalid sample rate) yields zero coefficients, which the
// caller treats as "mute"; use [ClampFrequency] to keep automated cutoffs in
// range.
package design
