// Package osc evaluates the periodic waveforms the graph's oscillator nodes
// produce.
//
// Phase is normalized to [0, 1). All shapes are aligned so that phase 0 is a
// rising zero crossing, matching the sine. Sawtooth and square are smoothed
// with a polynomial band-limited step (PolyBLEP) when the caller passes the
// per-sample phase increment.
package osc
