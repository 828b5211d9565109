// Package input turns user gestures into synth triggers.
//
// Keyboard maps computer-keyboard symbols, Pointer handles on-screen keys and
// MIDI consumes gomidi messages. All three share a Player, which reads the
// current instrument and volume from a Selection, triggers the engine and
// tracks which notes are visually pressed. Trigger failures are logged and
// swallowed so a bad gesture never interrupts input handling.
package input
