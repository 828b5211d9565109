package input

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-synth/synth"
)

// Selection holds the user's instrument and volume choice.
type Selection struct {
	mu  sync.RWMutex
	s   synth.Settings
	log logrus.FieldLogger
}

// NewSelection starts with synth.DefaultSettings. A nil log selects the
// logrus standard logger.
func NewSelection(log logrus.FieldLogger) *Selection {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Selection{s: synth.DefaultSettings(), log: log}
}

// SetInstrument selects an instrument by name. Unknown names fall back to
// the default instrument, which is returned.
func (s *Selection) SetInstrument(name string) synth.Instrument {
	inst := synth.ParseInstrumentOrDefault(name, s.log)

	s.mu.Lock()
	s.s.Instrument = inst
	s.mu.Unlock()
	return inst
}

// SetVolume parses and stores a volume. An unparsable value leaves the
// current volume in place and returns the error.
func (s *Selection) SetVolume(text string) (float64, error) {
	v, err := synth.ParseVolume(text)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"input": text,
			"error": err,
		}).Warn("volume rejected")
		return s.Volume(), err
	}

	s.mu.Lock()
	s.s.Volume = v
	s.mu.Unlock()
	return v, nil
}

// Volume returns the current volume.
func (s *Selection) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s.Volume
}

// Settings returns a snapshot of the selection.
func (s *Selection) Settings() synth.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s
}
