// Package level meters peak and RMS level of rendered float32 audio.
package level

import (
	"math"

	"github.com/viterin/vek/vek32"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// Peak returns the largest absolute sample value.
func Peak(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	tmp := vek32.Abs_Into(make([]float32, len(x)), x)
	return float64(vek32.Max(tmp))
}

// RMS returns the root mean square of x.
func RMS(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	sq := vek32.Mul_Into(make([]float32, len(x)), x, x)
	return math.Sqrt(float64(vek32.Mean(sq)))
}

// ApplyGain scales x in place.
func ApplyGain(x []float32, gain float64) {
	if len(x) == 0 || gain == 1 {
		return
	}
	vek32.MulNumber_Inplace(x, float32(gain))
}

// Meter accumulates peak and mean power across blocks.
type Meter struct {
	tmp    []float32
	peak   float64
	sumSq  float64
	frames int64
	clips  int64
}

// Process adds block to the running statistics.
func (m *Meter) Process(block []float32) {
	if len(block) == 0 {
		return
	}
	m.tmp = core.EnsureLen(m.tmp, len(block))

	abs := vek32.Abs_Into(m.tmp, block)
	m.peak = math.Max(m.peak, float64(vek32.Max(abs)))
	for _, v := range abs {
		if v >= 1 {
			m.clips++
		}
	}

	sq := vek32.Mul_Into(m.tmp, block, block)
	m.sumSq += float64(vek32.Mean(sq)) * float64(len(block))
	m.frames += int64(len(block))
}

// Peak returns the largest absolute value seen.
func (m *Meter) Peak() float64 { return m.peak }

// PeakDB returns Peak in dBFS.
func (m *Meter) PeakDB() float64 { return core.LinearToDB(m.peak) }

// RMS returns the RMS over every processed frame.
func (m *Meter) RMS() float64 {
	if m.frames == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.frames))
}

// RMSDB returns RMS in dBFS.
func (m *Meter) RMSDB() float64 { return core.LinearToDB(m.RMS()) }

// Frames returns the number of processed frames.
func (m *Meter) Frames() int64 { return m.frames }

// Clipped returns the number of samples at or beyond full scale.
func (m *Meter) Clipped() int64 { return m.clips }

// Reset clears the statistics.
func (m *Meter) Reset() {
	m.peak, m.sumSq, m.frames, m.clips = 0, 0, 0, 0
}
