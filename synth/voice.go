package synth

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-synth/dsp/graph"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

// Voice is one sounding note. It owns its nodes and is never reused.
type Voice struct {
	note       Note
	instrument Instrument
	volume     float64
	frequency  float64
	start      float64
	stop       float64

	oscs   []*graph.Oscillator
	lfo    *graph.Oscillator
	depth  *graph.Gain
	filter *graph.BiquadFilter
	gain   *graph.Gain

	remaining atomic.Int32
	finish    sync.Once
	done      chan struct{}
	engine    *Engine
}

// Note returns the triggered note.
func (v *Voice) Note() Note { return v.note }

// Instrument returns the instrument the voice was built with.
func (v *Voice) Instrument() Instrument { return v.instrument }

// Volume returns the volume the envelope was scaled by.
func (v *Voice) Volume() float64 { return v.volume }

// Frequency returns the note frequency in Hz.
func (v *Voice) Frequency() float64 { return v.frequency }

// Start returns the scheduled start time on the context clock.
func (v *Voice) Start() float64 { return v.start }

// Stop returns the scheduled stop time; Stop() == Start() + recipe duration.
func (v *Voice) Stop() float64 { return v.stop }

// Done is closed once every oscillator of the voice has ended.
func (v *Voice) Done() <-chan struct{} { return v.done }

// Ended reports whether Done is closed.
func (v *Voice) Ended() bool {
	select {
	case <-v.done:
		return true
	default:
		return false
	}
}

// PeakGain returns the largest scheduled envelope value.
func (v *Voice) PeakGain() float64 {
	return v.gain.Gain().MaxOver(v.start, v.stop)
}

// GainAt returns the scheduled envelope value at t.
func (v *Voice) GainAt(t float64) float64 {
	return v.gain.Gain().ValueAt(t)
}

// Oscillators returns the audible oscillators.
func (v *Voice) Oscillators() []*graph.Oscillator {
	return append([]*graph.Oscillator(nil), v.oscs...)
}

// Vibrato returns the LFO and its depth gain, or nils.
func (v *Voice) Vibrato() (*graph.Oscillator, *graph.Gain) {
	return v.lfo, v.depth
}

// Filter returns the voice filter or nil.
func (v *Voice) Filter() *graph.BiquadFilter { return v.filter }

// Gain returns the envelope gain node.
func (v *Voice) Gain() *graph.Gain { return v.gain }

func (v *Voice) sourceEnded() {
	if v.remaining.Add(-1) == 0 {
		v.end()
	}
}

func (v *Voice) end() {
	v.finish.Do(func() {
		close(v.done)
		v.engine.active.Add(-1)
	})
}

// build wires a voice into the graph. On error every node it created is
// removed again and the voice is not counted as active.
func (e *Engine) build(note Note, freq float64, s Settings) (_ *Voice, err error) {
	r := e.Recipe(s.Instrument)
	ctx := e.ctx

	now := ctx.CurrentTime()
	v := &Voice{
		note:       note,
		instrument: s.Instrument,
		volume:     s.Volume,
		frequency:  freq,
		start:      now,
		stop:       now + r.Duration,
		done:       make(chan struct{}),
		engine:     e,
	}

	var created []graph.Node
	defer func() {
		if err != nil {
			ctx.Remove(created...)
		}
	}()

	if v.gain, err = ctx.NewGain(); err != nil {
		return nil, err
	}
	created = append(created, v.gain)
	if err = scheduleEnvelope(v.gain.Gain(), r.Envelope, s.Volume, now); err != nil {
		return nil, err
	}
	if err = ctx.Connect(v.gain, ctx.Destination()); err != nil {
		return nil, err
	}

	var sink graph.Node = v.gain
	if r.Filter != nil {
		if v.filter, err = buildFilter(ctx, r.Filter, freq, now); err != nil {
			return nil, err
		}
		created = append(created, v.filter)
		if err = ctx.Connect(v.filter, v.gain); err != nil {
			return nil, err
		}
		sink = v.filter
	}

	for _, part := range r.Oscillators {
		ratio := part.Ratio
		if ratio == 0 {
			ratio = 1
		}
		var o *graph.Oscillator
		if o, err = ctx.NewOscillator(part.Waveform); err != nil {
			return nil, err
		}
		created = append(created, o)
		if err = o.Frequency().SetValue(freq*ratio + part.DetuneHz); err != nil {
			return nil, err
		}
		if err = ctx.Connect(o, sink); err != nil {
			return nil, err
		}
		v.oscs = append(v.oscs, o)
	}

	sources := v.oscs
	if vib := r.Vibrato; vib != nil {
		if v.lfo, err = ctx.NewOscillator(osc.Sine); err != nil {
			return nil, err
		}
		created = append(created, v.lfo)
		if err = v.lfo.Frequency().SetValue(vib.RateHz); err != nil {
			return nil, err
		}
		if v.depth, err = ctx.NewGain(); err != nil {
			return nil, err
		}
		created = append(created, v.depth)
		if err = v.depth.Gain().SetValue(vib.DepthHz); err != nil {
			return nil, err
		}
		if err = ctx.Connect(v.lfo, v.depth); err != nil {
			return nil, err
		}
		for _, o := range v.oscs {
			if err = ctx.ConnectParam(v.depth, o.Frequency()); err != nil {
				return nil, err
			}
		}
		sources = append(append([]*graph.Oscillator(nil), v.oscs...), v.lfo)
	}

	// end runs once, whether the sources finish or arming fails.
	v.remaining.Store(int32(len(sources)))
	e.active.Add(1)
	defer func() {
		if err != nil {
			v.end()
		}
	}()
	for _, o := range sources {
		o.OnEnded(v.sourceEnded)
		if err = o.Start(now); err != nil {
			return nil, err
		}
		if err = o.Stop(v.stop); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func buildFilter(ctx *graph.Context, part *FilterSpec, freq, now float64) (_ *graph.BiquadFilter, err error) {
	f, err := ctx.NewBiquadFilter(part.Type)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			ctx.Remove(f)
		}
	}()

	cutoff := part.CutoffHz
	if cutoff == 0 {
		cutoff = part.CutoffRatio * freq
	}
	if err = f.Frequency().SetValue(cutoff); err != nil {
		return nil, err
	}
	if part.Q > 0 {
		if err = f.Q().SetValue(part.Q); err != nil {
			return nil, err
		}
	}

	if len(part.Sweep) > 0 {
		if err = f.Frequency().SetValueAtTime(cutoff, now); err != nil {
			return nil, err
		}
		for _, p := range part.Sweep {
			if err = f.Frequency().ExponentialRampToValueAtTime(p.Ratio*freq, now+p.Time); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// scheduleEnvelope writes env scaled by vol onto p. Exponential segments
// target at least DecayFloor*vol; a zero volume stays at zero throughout.
func scheduleEnvelope(p *graph.Param, env EnvelopeSpec, vol, now float64) error {
	if err := p.SetValue(env.Start * vol); err != nil {
		return err
	}
	if err := p.SetValueAtTime(env.Start*vol, now); err != nil {
		return err
	}
	if vol == 0 {
		return nil
	}

	for _, bp := range env.Points {
		t := now + bp.Time
		var err error
		if bp.Shape == Exponential {
			err = p.ExponentialRampToValueAtTime(math.Max(bp.Level, DecayFloor)*vol, t)
		} else {
			err = p.LinearRampToValueAtTime(bp.Level*vol, t)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
