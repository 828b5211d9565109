//go:build !cgo

package main

import (
	"errors"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// openMIDI fails without cgo, which the rtmidi driver needs.
func openMIDI(string) (drivers.In, func(), error) {
	return nil, nil, errors.New("midi input needs a cgo build")
}
