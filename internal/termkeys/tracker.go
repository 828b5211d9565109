// Package termkeys turns raw terminal input into key down and key up events.
//
// Terminals report characters, not key transitions. Holding a key produces
// auto-repeat characters and releasing it produces nothing, so Tracker
// infers both: a character for a key that is already held is a repeat, and
// a key that stays quiet for the release window is reported as released.
package termkeys

import (
	"sort"
	"time"
)

// DefaultReleaseAfter covers the initial auto-repeat delay of common
// terminals.
const DefaultReleaseAfter = 600 * time.Millisecond

// Kind classifies an Event.
type Kind int

const (
	KeyDown Kind = iota
	KeyUp
	Quit
)

// Event is one inferred key transition.
type Event struct {
	Kind   Kind
	Key    string
	Repeat bool
}

// Tracker infers key state from a stream of characters.
type Tracker struct {
	releaseAfter time.Duration
	held         map[string]time.Time
}

// NewTracker returns a Tracker. Non-positive releaseAfter selects
// DefaultReleaseAfter.
func NewTracker(releaseAfter time.Duration) *Tracker {
	if releaseAfter <= 0 {
		releaseAfter = DefaultReleaseAfter
	}
	return &Tracker{releaseAfter: releaseAfter, held: make(map[string]time.Time)}
}

// Press records a character for key at now.
func (t *Tracker) Press(key string, now time.Time) Event {
	_, repeat := t.held[key]
	t.held[key] = now
	return Event{Kind: KeyDown, Key: key, Repeat: repeat}
}

// Expire releases every key not seen within the release window, in key
// order.
func (t *Tracker) Expire(now time.Time) []Event {
	return t.release(func(last time.Time) bool { return now.Sub(last) >= t.releaseAfter })
}

// ReleaseAll releases every held key.
func (t *Tracker) ReleaseAll() []Event {
	return t.release(func(time.Time) bool { return true })
}

func (t *Tracker) release(due func(last time.Time) bool) []Event {
	var out []Event
	for key, last := range t.held {
		if due(last) {
			out = append(out, Event{Kind: KeyUp, Key: key})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	for _, ev := range out {
		delete(t.held, ev.Key)
	}
	return out
}

// Held reports whether key is currently considered held.
func (t *Tracker) Held(key string) bool {
	_, ok := t.held[key]
	return ok
}
