package automation

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrNonPositiveTarget is returned for exponential ramps to values <= 0.
	ErrNonPositiveTarget = errors.New("exponential ramp target must be > 0")
	// ErrInvalidTime is returned for negative or non-finite event times.
	ErrInvalidTime = errors.New("event time must be finite and >= 0")
	// ErrInvalidValue is returned for non-finite event values.
	ErrInvalidValue = errors.New("event value must be finite")
)

// Kind identifies an automation event.
type Kind int

const (
	KindSet Kind = iota
	KindLinearRamp
	KindExponentialRamp
)

func (k Kind) String() string {
	switch k {
	case KindSet:
		return "set"
	case KindLinearRamp:
		return "linear"
	case KindExponentialRamp:
		return "exponential"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is one scheduled change.
type Event struct {
	Kind  Kind
	Time  float64
	Value float64
}

// Param is an automatable value. It is not safe for concurrent use; the
// graph serializes access.
type Param struct {
	def      float64
	min, max float64
	events   []Event
}

// NewParam returns a Param with default value def and the given nominal
// range. Scheduled values are not clamped; [Param.ValueAt] clamps.
func NewParam(def, min, max float64) *Param {
	return &Param{def: def, min: min, max: max}
}

// Default returns the value used before the first event.
func (p *Param) Default() float64 {
	return p.def
}

// SetDefault changes the value used before the first event, the Web Audio
// "value" setter.
func (p *Param) SetDefault(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidValue
	}
	p.def = v
	return nil
}

// Events returns a copy of the scheduled events in time order.
func (p *Param) Events() []Event {
	return append([]Event(nil), p.events...)
}

// SetValueAtTime schedules an instant change to v at t.
func (p *Param) SetValueAtTime(v, t float64) error {
	return p.insert(Event{Kind: KindSet, Time: t, Value: v})
}

// LinearRampToValueAtTime schedules a linear ramp ending at (t, v).
func (p *Param) LinearRampToValueAtTime(v, t float64) error {
	return p.insert(Event{Kind: KindLinearRamp, Time: t, Value: v})
}

// ExponentialRampToValueAtTime schedules an exponential ramp ending at (t, v).
func (p *Param) ExponentialRampToValueAtTime(v, t float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: %v", ErrNonPositiveTarget, v)
	}
	return p.insert(Event{Kind: KindExponentialRamp, Time: t, Value: v})
}

func (p *Param) insert(e Event) error {
	if math.IsNaN(e.Time) || math.IsInf(e.Time, 0) || e.Time < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTime, e.Time)
	}
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidValue, e.Value)
	}

	// Events at equal times keep insertion order.
	i := sort.Search(len(p.events), func(i int) bool {
		return p.events[i].Time > e.Time
	})
	p.events = append(p.events, Event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
	return nil
}

// ValueAt returns the clamped intrinsic value at time t.
func (p *Param) ValueAt(t float64) float64 {
	return p.clamp(p.rawValueAt(t))
}

func (p *Param) rawValueAt(t float64) float64 {
	v, t0 := p.def, 0.0

	for _, e := range p.events {
		if e.Time <= t {
			v, t0 = e.Value, e.Time
			continue
		}

		switch e.Kind {
		case KindLinearRamp:
			return linear(v, e.Value, t0, e.Time, t)
		case KindExponentialRamp:
			return exponential(v, e.Value, t0, e.Time, t)
		default:
			return v
		}
	}

	return v
}

// MaxOver returns the largest intrinsic value on [t0, t1]. Segments are
// monotone, so the extremes sit on event points or the interval ends.
func (p *Param) MaxOver(t0, t1 float64) float64 {
	if t1 < t0 {
		t0, t1 = t1, t0
	}

	m := math.Max(p.ValueAt(t0), p.ValueAt(t1))
	for _, e := range p.events {
		if e.Time > t0 && e.Time <= t1 {
			m = math.Max(m, p.clamp(e.Value))
		}
	}
	return m
}

// SettledAfter returns the time after which the value no longer changes.
func (p *Param) SettledAfter() float64 {
	if len(p.events) == 0 {
		return 0
	}
	return p.events[len(p.events)-1].Time
}

func (p *Param) clamp(v float64) float64 {
	if v < p.min {
		return p.min
	}
	if v > p.max {
		return p.max
	}
	return v
}

func linear(v0, v1, t0, t1, t float64) float64 {
	if t1 <= t0 {
		return v1
	}
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

func exponential(v0, v1, t0, t1, t float64) float64 {
	if t1 <= t0 {
		return v1
	}
	if v0 <= 0 {
		return v0
	}
	return v0 * math.Pow(v1/v0, (t-t0)/(t1-t0))
}
