package graph

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp/automation"
)

// Param is an automatable node parameter. Its computed value is the
// scheduled value plus the sum of connected modulation signals, clamped to
// the nominal range.
type Param struct {
	owner    *nodeBase
	name     string
	auto     *automation.Param
	min, max float64
	mods     []*nodeBase
	buf      []float64
}

func newParam(owner *nodeBase, name string, def, min, max float64) *Param {
	p := &Param{
		owner: owner,
		name:  name,
		auto:  automation.NewParam(def, min, max),
		min:   min,
		max:   max,
	}
	owner.params = append(owner.params, p)
	return p
}

// Name returns the parameter name.
func (p *Param) Name() string {
	return p.name
}

// Value returns the value used before any scheduled event.
func (p *Param) Value() float64 {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()
	return p.auto.Default()
}

// SetValue changes the value used before any scheduled event.
func (p *Param) SetValue(v float64) error {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()
	return p.auto.SetDefault(v)
}

// SetValueAtTime schedules an instant change.
func (p *Param) SetValueAtTime(v, t float64) error {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()
	return p.auto.SetValueAtTime(v, t)
}

// LinearRampToValueAtTime schedules a linear ramp from the previous event.
func (p *Param) LinearRampToValueAtTime(v, t float64) error {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()
	return p.auto.LinearRampToValueAtTime(v, t)
}

// ExponentialRampToValueAtTime schedules an exponential ramp from the
// previous event. v must be > 0.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) error {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()
	return p.auto.ExponentialRampToValueAtTime(v, t)
}

// ValueAt returns the scheduled value at t, without modulation.
func (p *Param) ValueAt(t float64) float64 {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()
	return p.auto.ValueAt(t)
}

// MaxOver returns the largest scheduled value on [t0, t1].
func (p *Param) MaxOver(t0, t1 float64) float64 {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()
	return p.auto.MaxOver(t0, t1)
}

// Events returns the scheduled events.
func (p *Param) Events() []automation.Event {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()
	return p.auto.Events()
}

// Modulators returns the number of signals driving the parameter.
func (p *Param) Modulators() int {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()
	return len(p.mods)
}

// fill computes n per-sample values starting at frame0. Callers hold the
// context lock.
func (p *Param) fill(frame0 int64, n int) []float64 {
	if cap(p.buf) < n {
		p.buf = make([]float64, n)
	}
	buf := p.buf[:n]

	cfg := p.owner.ctx.cfg
	if len(p.mods) == 0 && cfg.FrameTime(frame0) >= p.auto.SettledAfter() {
		v := p.auto.ValueAt(cfg.FrameTime(frame0))
		for i := range buf {
			buf[i] = v
		}
		return buf
	}

	for i := range buf {
		buf[i] = p.auto.ValueAt(cfg.FrameTime(frame0 + int64(i)))
	}
	if len(p.mods) == 0 {
		return buf
	}

	for _, m := range p.mods {
		for i, v := range m.out[:n] {
			buf[i] += v
		}
	}
	for i, v := range buf {
		buf[i] = math.Max(p.min, math.Min(p.max, v))
	}
	return buf
}
