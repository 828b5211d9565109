package synth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNote is returned for unparseable or out-of-range notes.
	ErrInvalidNote = errors.New("synth: invalid note")
	// ErrBackendUnavailable is returned when the context is not running.
	ErrBackendUnavailable = errors.New("synth: audio backend unavailable")
	// ErrTriggerDeferred reports a trigger queued until the context resumes.
	ErrTriggerDeferred = fmt.Errorf("%w: trigger deferred until resume", ErrBackendUnavailable)
	// ErrInvalidVolume is returned for volume input that is not a finite number.
	ErrInvalidVolume = errors.New("synth: invalid volume")
	// ErrUnknownInstrument is returned for instrument names outside the enum.
	ErrUnknownInstrument = errors.New("synth: unknown instrument")
	// ErrInvalidRecipe is returned by recipe validation.
	ErrInvalidRecipe = errors.New("synth: invalid recipe")
)
