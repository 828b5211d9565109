// Package audioout plays a rendering source on the system audio device.
//
// The oto v3 backend is the default. Building with the "headless" tag
// replaces it with a player that keeps pulling the source without a device,
// for CI machines and containers without audio.
package audioout

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/measure/level"
)

// Source renders mono audio. *graph.Context implements it.
type Source interface {
	Render(dst []float32)
}

// Stream adapts a Source to an io.Reader of little-endian float32 samples.
type Stream struct {
	src Source

	mu    sync.Mutex
	buf   []float32
	gain  float64
	meter level.Meter
}

// NewStream wraps src at unity gain.
func NewStream(src Source) *Stream {
	return &Stream{src: src, gain: 1}
}

// SetGain sets the output gain applied after rendering.
func (s *Stream) SetGain(g float64) {
	s.mu.Lock()
	s.gain = core.Clamp(g, 0, 4)
	s.mu.Unlock()
}

// Read renders len(p)/4 samples into p.
func (s *Stream) Read(p []byte) (int, error) {
	n := len(p) / 4
	if n == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = core.EnsureLen(s.buf, n)
	s.src.Render(s.buf)
	level.ApplyGain(s.buf, s.gain)
	s.meter.Process(s.buf)

	for i, v := range s.buf {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return 4 * n, nil
}

// Levels returns peak and RMS of everything streamed since the last call,
// then resets the meter.
func (s *Stream) Levels() (peak, rms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	peak, rms = s.meter.Peak(), s.meter.RMS()
	s.meter.Reset()
	return peak, rms
}
