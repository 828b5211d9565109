// Package synth turns note triggers into self-freeing voices on a
// [graph.Context].
//
// A trigger resolves the note to an equal-tempered frequency (A4 = 440 Hz),
// looks up the instrument's [Recipe] and schedules the recipe's oscillators,
// optional vibrato, optional lowpass filter and gain envelope relative to the
// context's current time. Voices play out on the context clock and are
// removed from the graph once their oscillators stop; nothing needs to be
// torn down by the caller.
//
// Instrument and volume are passed explicitly with every trigger through
// [Settings]; the engine keeps no "current instrument" state.
package synth
