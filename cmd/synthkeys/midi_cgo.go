//go:build cgo

package main

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// openMIDI opens the first input whose name starts with prefix.
func openMIDI(prefix string) (drivers.In, func(), error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, nil, fmt.Errorf("midi driver: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, nil, fmt.Errorf("midi inputs: %w", err)
	}
	for _, in := range ins {
		if strings.HasPrefix(in.String(), prefix) {
			return in, func() {
				in.Close()
				drv.Close()
			}, nil
		}
	}
	drv.Close()
	return nil, nil, fmt.Errorf("no MIDI input starting with %q", prefix)
}
