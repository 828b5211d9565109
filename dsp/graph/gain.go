package graph

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// Gain multiplies the mix of its inputs by the gain parameter.
type Gain struct {
	nodeBase
	gain *Param
}

// NewGain creates a unity gain node.
func (c *Context) NewGain() (*Gain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := &Gain{}
	g.init(c, kindGain, g)
	g.gain = newParam(&g.nodeBase, "gain", 1, -math.MaxFloat32, math.MaxFloat32)
	if err := c.add(&g.nodeBase); err != nil {
		return nil, err
	}
	return g, nil
}

// Gain returns the gain parameter.
func (g *Gain) Gain() *Param {
	return g.gain
}

func (g *Gain) process(frame0 int64, n int) {
	out := g.out[:n]
	mixInputs(out, g.inputs)
	vecmath.MulBlockInPlace(out, g.gain.fill(frame0, n))
}

func (g *Gain) finished() bool {
	return g.processorDone()
}
