package graph

type kind int

const (
	kindDestination kind = iota
	kindOscillator
	kindGain
	kindBiquad
)

func (k kind) String() string {
	switch k {
	case kindOscillator:
		return "oscillator"
	case kindGain:
		return "gain"
	case kindBiquad:
		return "biquad"
	default:
		return "destination"
	}
}

// Node is any vertex of the graph.
type Node interface {
	// ID returns a context-unique identifier.
	ID() int
	base() *nodeBase
}

type processor interface {
	process(frame0 int64, n int)
	finished() bool
}

type nodeBase struct {
	ctx  *Context
	id   int
	kind kind
	proc processor

	inputs    []*nodeBase
	outputs   []*nodeBase
	paramOuts []*Param
	params    []*Param

	out      []float64
	hadInput bool
	removed  bool
}

func (nb *nodeBase) init(c *Context, k kind, p processor) {
	nb.ctx = c
	nb.kind = k
	nb.proc = p
	nb.id = c.nextID
	c.nextID++
}

// ID returns the node identifier.
func (nb *nodeBase) ID() int {
	return nb.id
}

func (nb *nodeBase) base() *nodeBase {
	return nb
}

func (nb *nodeBase) finished() bool {
	return nb.proc.finished()
}

// Removed reports whether the node has been freed by the context.
func (nb *nodeBase) Removed() bool {
	nb.ctx.mu.Lock()
	defer nb.ctx.mu.Unlock()
	return nb.removed
}

// processorDone is the self-freeing rule shared by processing nodes: once
// connected, a processor lives as long as something feeds it.
func (nb *nodeBase) processorDone() bool {
	return nb.hadInput && len(nb.inputs) == 0
}

// Destination mixes every connected input into the context output.
type Destination struct {
	nodeBase
}

func (d *Destination) process(_ int64, n int) {
	mixInputs(d.out[:n], d.inputs)
}

func (d *Destination) finished() bool {
	return false
}

// Inputs returns the number of nodes feeding the destination.
func (d *Destination) Inputs() int {
	d.ctx.mu.Lock()
	defer d.ctx.mu.Unlock()
	return len(d.inputs)
}
