// Package automation implements a schedulable parameter timeline.
//
// A [Param] holds a default value and an ordered list of events: instant
// sets, linear ramps and exponential ramps. A ramp runs from the previous
// event (or the default value at time 0) to its own time and value. Times are
// in seconds on the owning context's clock.
//
// Exponential ramps need a strictly positive target. When the ramp's start
// value is not positive the value holds until the ramp's end time, then
// jumps.
package automation
