package synth

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Instrument selects a recipe.
type Instrument int

const (
	Piano Instrument = iota
	Harmonium
	Sitar
	Santur
	Sarangi
	Sarod
)

// DefaultInstrument is used when a selection cannot be parsed.
const DefaultInstrument = Piano

var instrumentNames = [...]string{"piano", "harmonium", "sitar", "santur", "sarangi", "sarod"}

// Instruments returns every instrument in declaration order.
func Instruments() []Instrument {
	out := make([]Instrument, len(instrumentNames))
	for i := range out {
		out[i] = Instrument(i)
	}
	return out
}

func (i Instrument) String() string {
	if !i.Valid() {
		return fmt.Sprintf("Instrument(%d)", int(i))
	}
	return instrumentNames[i]
}

// Valid reports whether i is one of the declared instruments.
func (i Instrument) Valid() bool {
	return i >= 0 && int(i) < len(instrumentNames)
}

// ParseInstrument parses a case-insensitive instrument name.
func ParseInstrument(name string) (Instrument, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range instrumentNames {
		if s == n {
			return Instrument(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInstrument, name)
}

// ParseInstrumentOrDefault parses name and falls back to DefaultInstrument,
// logging a warning, when it is not recognized.
func ParseInstrumentOrDefault(name string, log logrus.FieldLogger) Instrument {
	inst, err := ParseInstrument(name)
	if err == nil {
		return inst
	}
	if log != nil {
		log.WithFields(logrus.Fields{
			"selection": name,
			"fallback":  DefaultInstrument.String(),
		}).Warn("unknown instrument, falling back")
	}
	return DefaultInstrument
}

// MarshalText implements encoding.TextMarshaler.
func (i Instrument) MarshalText() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInstrument, int(i))
	}
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Instrument) UnmarshalText(text []byte) error {
	v, err := ParseInstrument(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}
