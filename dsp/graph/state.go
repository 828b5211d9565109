package graph

import "fmt"

// State is the lifecycle state of a Context.
type State int

const (
	// StateRunning advances the clock and produces audio.
	StateRunning State = iota
	// StateSuspended holds the clock; Render outputs silence.
	StateSuspended
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// State returns the current lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnStateChange registers fn to be called after every state transition.
func (c *Context) OnStateChange(fn func(State)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Resume moves a suspended context back to running.
func (c *Context) Resume() error {
	return c.transition(StateRunning)
}

// Suspend holds the clock until Resume is called.
func (c *Context) Suspend() error {
	return c.transition(StateSuspended)
}

// Close releases every node. Oscillators that have not ended are ended
// now and their callbacks fire before the state listeners. Closing twice
// is a no-op.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	ended := c.ended
	c.ended = nil
	for _, n := range c.nodes {
		if o, ok := n.proc.(*Oscillator); ok && !o.ended {
			o.ended = true
			if o.onEnded != nil {
				ended = append(ended, o.onEnded)
			}
		}
		n.removed = true
	}
	c.nodes = nil
	c.dest.inputs = nil
	c.dirty = true
	listeners := append([]func(State){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range ended {
		fn()
	}
	notify(listeners, StateClosed)
	return nil
}

func (c *Context) transition(to State) error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == to {
		c.mu.Unlock()
		return nil
	}
	c.state = to
	listeners := append([]func(State){}, c.listeners...)
	c.mu.Unlock()

	notify(listeners, to)
	return nil
}

func notify(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}
