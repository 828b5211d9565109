package graph

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-synth/dsp/core"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Context owns the clock, the destination and every live node.
type Context struct {
	mu sync.Mutex

	cfg   core.ProcessorConfig
	frame int64
	state State

	nextID int
	nodes  []*nodeBase
	dest   *Destination

	order []*nodeBase
	dirty bool

	listeners []func(State)
	ended     []func()
}

// NewContext returns a running context.
func NewContext(opts ...core.ProcessorOption) *Context {
	c := &Context{
		cfg:   core.ApplyProcessorOptions(opts...),
		state: StateRunning,
		dirty: true,
	}
	c.dest = &Destination{}
	c.dest.init(c, kindDestination, c.dest)
	return c
}

// SampleRate returns the rendering sample rate in Hz.
func (c *Context) SampleRate() float64 {
	return c.cfg.SampleRate
}

// BlockSize returns the render quantum in frames.
func (c *Context) BlockSize() int {
	return c.cfg.BlockSize
}

// CurrentTime returns the time of the next frame to render, in seconds.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.FrameTime(c.frame)
}

// Frame returns the index of the next frame to render.
func (c *Context) Frame() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Destination returns the mixing sink.
func (c *Context) Destination() *Destination {
	return c.dest
}

// ActiveSources returns the number of oscillators that have not ended.
func (c *Context) ActiveSources() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, nb := range c.nodes {
		if nb.kind == kindOscillator {
			n++
		}
	}
	return n
}

// NodeCount returns the number of live nodes, not counting the destination.
func (c *Context) NodeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// Connect routes the output of src into dst.
func (c *Context) Connect(src, dst Node) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, d := src.base(), dst.base()
	if err := c.checkEdge(s, d); err != nil {
		return err
	}
	if d.kind == kindOscillator {
		return fmt.Errorf("%w: %s", ErrNoInput, d.kind)
	}
	if s.kind == kindDestination {
		return fmt.Errorf("%w: destination has no output", ErrNoInput)
	}
	for _, o := range s.outputs {
		if o == d {
			return nil
		}
	}

	s.outputs = append(s.outputs, d)
	d.inputs = append(d.inputs, s)
	d.hadInput = true
	c.dirty = true
	return nil
}

// ConnectParam adds the output of src to p every sample.
func (c *Context) ConnectParam(src Node, p *Param) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := src.base()
	if err := c.checkEdge(s, p.owner); err != nil {
		return err
	}
	if s.kind == kindDestination {
		return fmt.Errorf("%w: destination has no output", ErrNoInput)
	}
	for _, m := range p.mods {
		if m == s {
			return nil
		}
	}

	s.paramOuts = append(s.paramOuts, p)
	p.mods = append(p.mods, s)
	c.dirty = true
	return nil
}

// Connected reports whether src feeds dst directly.
func (c *Context) Connected(src, dst Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := dst.base()
	for _, o := range src.base().outputs {
		if o == d {
			return true
		}
	}
	return false
}

func (c *Context) checkEdge(s, d *nodeBase) error {
	if c.state == StateClosed {
		return ErrClosed
	}
	if s.ctx != c || d.ctx != c {
		return ErrForeignNode
	}
	if s.removed || d.removed {
		return ErrRemoved
	}
	if s == d || reaches(d, s) {
		return fmt.Errorf("%w: %s#%d -> %s#%d", ErrCycle, s.kind, s.id, d.kind, d.id)
	}
	return nil
}

// reaches reports whether target is downstream of from.
func reaches(from, target *nodeBase) bool {
	seen := map[*nodeBase]struct{}{}
	stack := []*nodeBase{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == target {
			return true
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		stack = append(stack, n.outputs...)
		for _, p := range n.paramOuts {
			stack = append(stack, p.owner)
		}
	}
	return false
}

// Remove detaches nodes from the graph and frees them without firing any
// ended callback. Nodes already freed, or owned by another context, are
// skipped.
func (c *Context) Remove(nodes ...Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	drop := make(map[*nodeBase]struct{}, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		nb := n.base()
		if nb.ctx != c || nb.removed || nb.kind == kindDestination {
			continue
		}
		c.detach(nb)
		drop[nb] = struct{}{}
	}
	if len(drop) == 0 {
		return
	}

	live := c.nodes[:0]
	for _, nb := range c.nodes {
		if _, ok := drop[nb]; !ok {
			live = append(live, nb)
		}
	}
	clear(c.nodes[len(live):])
	c.nodes = live
	c.dirty = true
}

func (c *Context) add(nb *nodeBase) error {
	if c.state == StateClosed {
		return ErrClosed
	}
	c.nodes = append(c.nodes, nb)
	c.dirty = true
	return nil
}

// Render fills dst with the destination mix and advances the clock by
// len(dst) frames. A suspended or closed context writes silence and holds
// the clock.
func (c *Context) Render(dst []float32) {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		core.Zero(dst)
		return
	}

	for off := 0; off < len(dst); {
		n := min(c.cfg.BlockSize, len(dst)-off)
		c.renderQuantum(n)
		for i, v := range c.dest.out[:n] {
			dst[off+i] = float32(v)
		}
		off += n
	}

	ended := c.ended
	c.ended = nil
	c.mu.Unlock()

	for _, fn := range ended {
		fn()
	}
}

// RenderSeconds renders d seconds into a new buffer.
func (c *Context) RenderSeconds(d float64) []float32 {
	if d <= 0 {
		return nil
	}
	out := make([]float32, int(c.cfg.FrameAt(d)))
	c.Render(out)
	return out
}

func (c *Context) renderQuantum(n int) {
	if c.dirty {
		c.order = c.compile()
		c.dirty = false
	}

	for _, nb := range c.order {
		nb.out = core.EnsureLen(nb.out, n)
		nb.proc.process(c.frame, n)
	}

	c.frame += int64(n)
	c.prune()
}

// compile orders live nodes so every node runs after its audio and
// modulation sources (Kahn's algorithm). Connect rejects cycles, so every
// node is emitted.
func (c *Context) compile() []*nodeBase {
	all := append(append(make([]*nodeBase, 0, len(c.nodes)+1), c.nodes...), &c.dest.nodeBase)

	indegree := make(map[*nodeBase]int, len(all))
	for _, nb := range all {
		for _, o := range nb.outputs {
			indegree[o]++
		}
		for _, p := range nb.paramOuts {
			indegree[p.owner]++
		}
	}

	queue := make([]*nodeBase, 0, len(all))
	for _, nb := range all {
		if indegree[nb] == 0 {
			queue = append(queue, nb)
		}
	}

	order := make([]*nodeBase, 0, len(all))
	for len(queue) > 0 {
		nb := queue[0]
		queue = queue[1:]
		order = append(order, nb)

		release := func(d *nodeBase) {
			indegree[d]--
			if indegree[d] == 0 {
				queue = append(queue, d)
			}
		}
		for _, o := range nb.outputs {
			release(o)
		}
		for _, p := range nb.paramOuts {
			release(p.owner)
		}
	}
	return order
}

// prune removes ended sources, then processors whose every input is gone,
// until nothing changes.
func (c *Context) prune() {
	for {
		changed := false
		live := c.nodes[:0]
		for _, nb := range c.nodes {
			if nb.finished() {
				c.detach(nb)
				changed = true
				continue
			}
			live = append(live, nb)
		}
		clear(c.nodes[len(live):])
		c.nodes = live

		if !changed {
			return
		}
		c.dirty = true
	}
}

func (c *Context) detach(nb *nodeBase) {
	nb.removed = true
	for _, o := range nb.outputs {
		o.inputs = without(o.inputs, nb)
	}
	for _, p := range nb.paramOuts {
		p.mods = without(p.mods, nb)
	}
	for _, in := range nb.inputs {
		in.outputs = without(in.outputs, nb)
	}
	for _, p := range nb.params {
		for _, m := range p.mods {
			m.paramOuts = withoutParam(m.paramOuts, p)
		}
		p.mods = nil
	}
	nb.outputs, nb.paramOuts, nb.inputs = nil, nil, nil
}

func without(list []*nodeBase, nb *nodeBase) []*nodeBase {
	out := list[:0]
	for _, v := range list {
		if v != nb {
			out = append(out, v)
		}
	}
	return out
}

func withoutParam(list []*Param, p *Param) []*Param {
	out := list[:0]
	for _, v := range list {
		if v != p {
			out = append(out, v)
		}
	}
	return out
}

// mixInputs sums the current outputs of inputs into dst.
func mixInputs(dst []float64, inputs []*nodeBase) {
	core.Zero(dst)
	for _, in := range inputs {
		vecmath.AddBlockInPlace(dst, in.out[:len(dst)])
	}
}
