package synth

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// DefaultVolume is the initial master volume.
const DefaultVolume = 0.5

// Settings carries the selection read at trigger time.
type Settings struct {
	Instrument Instrument
	Volume     float64
}

// DefaultSettings returns piano at DefaultVolume.
func DefaultSettings() Settings {
	return Settings{Instrument: DefaultInstrument, Volume: DefaultVolume}
}

// ParseVolume parses slider input such as "0.75". Finite values are clamped
// into [0, 1]; anything else fails with ErrInvalidVolume.
func ParseVolume(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVolume, s)
	}
	return normalizeVolume(v)
}

func normalizeVolume(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidVolume, v)
	}
	return core.Clamp(v, 0, 1), nil
}
