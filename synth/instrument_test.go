package synth

import (
	"bytes"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func TestParseInstrument(t *testing.T) {
	for _, inst := range Instruments() {
		got, err := ParseInstrument(inst.String())
		require.NoError(t, err)
		assert.Equal(t, inst, got)
	}

	got, err := ParseInstrument(" SiTaR ")
	require.NoError(t, err)
	assert.Equal(t, Sitar, got)

	_, err = ParseInstrument("banjo")
	assert.ErrorIs(t, err, ErrUnknownInstrument)
	assert.Len(t, Instruments(), 6)
}

func TestParseInstrumentOrDefault(t *testing.T) {
	log, buf := testLogger()

	assert.Equal(t, Sarod, ParseInstrumentOrDefault("sarod", log))
	assert.Empty(t, buf.String())

	assert.Equal(t, Piano, ParseInstrumentOrDefault("theremin", log))
	assert.Contains(t, buf.String(), "falling back")
	assert.Contains(t, buf.String(), "theremin")

	assert.Equal(t, Piano, ParseInstrumentOrDefault("", nil))
}

func TestInstrumentText(t *testing.T) {
	b, err := Sarangi.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "sarangi", string(b))

	var inst Instrument
	require.NoError(t, inst.UnmarshalText([]byte("santur")))
	assert.Equal(t, Santur, inst)

	_, err = Instrument(42).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownInstrument)
}

func TestParseVolume(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: "0.75", want: 0.75},
		{in: " 1 ", want: 1},
		{in: "0", want: 0},
		{in: "1.5", want: 1},
		{in: "-3", want: 0},
		{in: "1e-1", want: 0.1},
	}
	for _, tt := range tests {
		got, err := ParseVolume(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, in := range []string{"", "loud", "NaN", "Inf", "-inf", "0.5dB"} {
		_, err := ParseVolume(in)
		assert.ErrorIs(t, err, ErrInvalidVolume, in)
	}

	_, err := normalizeVolume(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidVolume)
}
