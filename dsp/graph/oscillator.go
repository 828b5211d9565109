package graph

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/automation"
	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

// Oscillator is a periodic source. Frequency is in Hz, detune in cents.
type Oscillator struct {
	nodeBase

	waveform  osc.Waveform
	frequency *Param
	detune    *Param
	phasor    osc.Phasor

	started, stopped bool
	ended            bool
	startTime        float64
	stopTime         float64
	startFrame       int64
	stopFrame        int64
	onEnded          func()
}

// NewOscillator creates an unstarted oscillator at 440 Hz.
func (c *Context) NewOscillator(w osc.Waveform) (*Oscillator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	o := &Oscillator{waveform: w}
	o.init(c, kindOscillator, o)
	nyq := c.cfg.Nyquist()
	o.frequency = newParam(&o.nodeBase, "frequency", 440, -nyq, nyq)
	o.detune = newParam(&o.nodeBase, "detune", 0, -153600, 153600)
	if err := c.add(&o.nodeBase); err != nil {
		return nil, err
	}
	return o, nil
}

// Type returns the waveform.
func (o *Oscillator) Type() osc.Waveform {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.waveform
}

// SetType changes the waveform.
func (o *Oscillator) SetType(w osc.Waveform) {
	o.ctx.mu.Lock()
	o.waveform = w
	o.ctx.mu.Unlock()
}

// Frequency returns the frequency parameter.
func (o *Oscillator) Frequency() *Param {
	return o.frequency
}

// Detune returns the detune parameter.
func (o *Oscillator) Detune() *Param {
	return o.detune
}

// Start schedules the oscillator to begin at t. Times in the past start at
// the next rendered frame.
func (o *Oscillator) Start(t float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	if o.ctx.state == StateClosed {
		return ErrClosed
	}
	if o.started {
		return ErrAlreadyStarted
	}
	if !validTime(t) {
		return fmt.Errorf("start: %w: %v", automation.ErrInvalidTime, t)
	}
	o.started = true
	o.startTime = t
	o.startFrame = o.ctx.cfg.FrameAt(t)
	return nil
}

// Stop schedules the oscillator to end at t. A later call replaces the
// stop time as long as the oscillator has not ended.
func (o *Oscillator) Stop(t float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	if !o.started {
		return ErrNotStarted
	}
	if !validTime(t) {
		return fmt.Errorf("stop: %w: %v", automation.ErrInvalidTime, t)
	}
	if o.ended {
		return nil
	}
	o.stopped = true
	o.stopTime = t
	o.stopFrame = o.ctx.cfg.FrameAt(t)
	return nil
}

// StartTime returns the scheduled start time.
func (o *Oscillator) StartTime() (float64, bool) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.startTime, o.started
}

// StopTime returns the scheduled stop time.
func (o *Oscillator) StopTime() (float64, bool) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.stopTime, o.stopped
}

// OnEnded sets the callback fired once the oscillator has stopped.
func (o *Oscillator) OnEnded(fn func()) {
	o.ctx.mu.Lock()
	o.onEnded = fn
	o.ctx.mu.Unlock()
}

// Ended reports whether the stop time has been rendered.
func (o *Oscillator) Ended() bool {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.ended
}

func (o *Oscillator) process(frame0 int64, n int) {
	out := o.out[:n]
	freq := o.frequency.fill(frame0, n)
	det := o.detune.fill(frame0, n)
	sr := o.ctx.cfg.SampleRate

	for i := range out {
		f := frame0 + int64(i)
		if !o.started || f < o.startFrame || (o.stopped && f >= o.stopFrame) {
			out[i] = 0
			continue
		}

		hz := freq[i]
		if det[i] != 0 {
			hz *= core.CentsRatio(det[i])
		}
		ph, dt := o.phasor.Next(hz, sr)
		out[i] = osc.Value(o.waveform, ph, dt)
	}

	if o.stopped && !o.ended && frame0+int64(n) >= o.stopFrame {
		o.ended = true
		if o.onEnded != nil {
			o.ctx.ended = append(o.ctx.ended, o.onEnded)
		}
	}
}

func (o *Oscillator) finished() bool {
	return o.ended
}

func validTime(t float64) bool {
	return core.IsFinite(t) && t >= 0
}
