package osc

// Phasor accumulates normalized phase for a time-varying frequency.
type Phasor struct {
	phase float64
}

// Phase returns the current phase in [0, 1).
func (p *Phasor) Phase() float64 {
	return p.phase
}

// Next returns the current phase and the increment for freqHz, then advances.
// Negative frequencies run the phase backwards.
func (p *Phasor) Next(freqHz, sampleRate float64) (phase, dt float64) {
	phase = p.phase
	dt = freqHz / sampleRate
	p.phase = Wrap(p.phase + dt)
	return phase, dt
}

// Reset sets the phase back to 0.
func (p *Phasor) Reset() {
	p.phase = 0
}
