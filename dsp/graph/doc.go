// Package graph is a software audio backend modeled on the Web Audio API.
//
// A [Context] owns a sample clock, a single mixing [Destination] and a set of
// nodes: [Oscillator] sources, [Gain] and [BiquadFilter] processors. Nodes
// are wired with [Context.Connect]; node outputs may also drive a [Param]
// through [Context.ConnectParam], which adds the signal to the parameter's
// scheduled value every sample.
//
// Rendering is pull based: [Context.Render] processes the graph in render
// quanta of the configured block size, in topological order. Oscillators end
// at their stop time, fire their ended callback and are removed from the
// graph together with every processor left without inputs, so scheduled
// voices free themselves.
//
// All Context and node methods are safe for concurrent use. Callbacks run
// after the render or state change that caused them, outside the context
// lock.
package graph
