// Package biquad provides the second-order IIR section used by the graph's
// filter nodes.
//
// A [Section] implements Direct Form II Transposed processing for
// [Coefficients]. Coefficients may be swapped between samples with
// [Section.SetCoefficients] without clearing the delay line, which is how
// automated cutoff sweeps are rendered.
//
// Coefficient design lives in dsp/filter/design.
package biquad
