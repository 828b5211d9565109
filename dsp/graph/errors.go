package graph

import "errors"

var (
	// ErrClosed is returned by operations on a closed context.
	ErrClosed = errors.New("graph: context closed")
	// ErrCycle is returned when a connection would create a cycle.
	ErrCycle = errors.New("graph: connection creates a cycle")
	// ErrAlreadyStarted is returned when an oscillator is started twice.
	ErrAlreadyStarted = errors.New("graph: source already started")
	// ErrNotStarted is returned when stopping a source that was never started.
	ErrNotStarted = errors.New("graph: source not started")
	// ErrNoInput is returned when connecting into a node without inputs.
	ErrNoInput = errors.New("graph: node has no inputs")
	// ErrForeignNode is returned when nodes of different contexts are connected.
	ErrForeignNode = errors.New("graph: node belongs to another context")
	// ErrRemoved is returned when connecting a node that was already freed.
	ErrRemoved = errors.New("graph: node was removed")
)
