// Package pitch estimates the fundamental frequency of a rendered tone from
// its windowed magnitude spectrum.
//
// The estimator takes the strongest spectral peak inside the search range,
// then prefers a sub-harmonic peak when one carries a significant share of
// the energy, so tones with a strong octave overtone still report the
// played note. Peak positions are refined by parabolic interpolation of the
// log magnitude.
package pitch
