package audioout

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rampSource struct {
	next float32
}

func (r *rampSource) Render(dst []float32) {
	for i := range dst {
		dst[i] = r.next
		r.next += 0.125
	}
}

func TestStreamEncodesFloat32LE(t *testing.T) {
	s := NewStream(&rampSource{})
	p := make([]byte, 4*4+3)

	n, err := s.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	for i, want := range []float32{0, 0.125, 0.25, 0.375} {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
		assert.Equal(t, want, got)
	}

	n, err = s.Read(p[:3])
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStreamGainAndLevels(t *testing.T) {
	s := NewStream(&rampSource{next: 1})
	s.SetGain(0.5)

	p := make([]byte, 8)
	_, err := s.Read(p)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(p)))

	peak, rms := s.Levels()
	assert.InDelta(t, 0.5625, peak, 1e-6)
	assert.Greater(t, rms, 0.5)

	peak, _ = s.Levels()
	assert.Zero(t, peak)
}
