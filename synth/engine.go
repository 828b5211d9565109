package synth

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-synth/dsp/graph"
)

// DefaultQueueLimit bounds the deferred-trigger queue.
const DefaultQueueLimit = 64

// SuspendPolicy decides what happens to triggers while the context is
// suspended. A closed context always drops.
type SuspendPolicy int

const (
	// DropWhenSuspended rejects the trigger with ErrBackendUnavailable.
	DropWhenSuspended SuspendPolicy = iota
	// QueueWhenSuspended keeps the trigger and replays it on resume.
	QueueWhenSuspended
)

func (p SuspendPolicy) String() string {
	if p == QueueWhenSuspended {
		return "queue"
	}
	return "drop"
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithSuspendPolicy sets the suspended-context policy.
func WithSuspendPolicy(p SuspendPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithQueueLimit sets how many deferred triggers are kept; the oldest is
// dropped when full. Values <= 0 are ignored.
func WithQueueLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.queueLimit = n
		}
	}
}

// WithRecipes overrides the built-in recipes per instrument.
func WithRecipes(book Book) Option {
	return func(e *Engine) {
		for inst, r := range book {
			e.book[inst] = r.clone()
		}
	}
}

type deferred struct {
	note     Note
	settings Settings
}

// Engine schedules voices on a graph context.
type Engine struct {
	ctx        *graph.Context
	log        logrus.FieldLogger
	policy     SuspendPolicy
	queueLimit int
	book       Book

	mu    sync.Mutex
	queue []deferred

	active atomic.Int64
}

// NewEngine creates an engine on ctx. Recipes supplied with WithRecipes
// are validated.
func NewEngine(ctx *graph.Context, opts ...Option) (*Engine, error) {
	if ctx == nil {
		return nil, errors.New("synth: nil context")
	}

	e := &Engine{
		ctx:        ctx,
		log:        logrus.StandardLogger(),
		queueLimit: DefaultQueueLimit,
		book:       DefaultBook(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for inst, r := range e.book {
		if !inst.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownInstrument, int(inst))
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", inst, err)
		}
	}

	ctx.OnStateChange(e.stateChanged)
	return e, nil
}

// Context returns the backend context.
func (e *Engine) Context() *graph.Context {
	return e.ctx
}

// Recipe returns the recipe used for inst.
func (e *Engine) Recipe(inst Instrument) Recipe {
	if r, ok := e.book[inst]; ok {
		return r.clone()
	}
	return e.book[DefaultInstrument].clone()
}

// ActiveVoices returns the number of voices that have not finished.
func (e *Engine) ActiveVoices() int {
	return int(e.active.Load())
}

// Pending returns the number of deferred triggers.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// TriggerName parses note and triggers it.
func (e *Engine) TriggerName(note string, s Settings) (*Voice, error) {
	n, err := ParseNote(note)
	if err != nil {
		return nil, err
	}
	return e.Trigger(n, s)
}

// Trigger schedules a voice for note starting now. It never blocks on
// audio. An invalid instrument falls back to DefaultInstrument; a backend
// that is not running yields ErrBackendUnavailable or ErrTriggerDeferred.
func (e *Engine) Trigger(note Note, s Settings) (*Voice, error) {
	freq, err := Frequency(note)
	if err != nil {
		return nil, err
	}
	vol, err := normalizeVolume(s.Volume)
	if err != nil {
		return nil, err
	}

	inst := s.Instrument
	if !inst.Valid() {
		e.log.WithFields(logrus.Fields{
			"instrument": int(inst),
			"fallback":   DefaultInstrument.String(),
		}).Warn("unknown instrument, falling back")
		inst = DefaultInstrument
	}
	s = Settings{Instrument: inst, Volume: vol}

	switch state := e.ctx.State(); state {
	case graph.StateRunning:
	case graph.StateSuspended:
		return nil, e.suspended(note, s)
	default:
		e.log.WithFields(logrus.Fields{
			"note":  note.String(),
			"state": state.String(),
		}).Info("trigger dropped")
		return nil, fmt.Errorf("%w: context %s", ErrBackendUnavailable, state)
	}

	v, err := e.build(note, freq, s)
	if err != nil {
		if errors.Is(err, graph.ErrClosed) {
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"note":       note.String(),
		"instrument": inst.String(),
		"volume":     vol,
		"start":      v.start,
	}).Debug("voice scheduled")
	return v, nil
}

func (e *Engine) suspended(note Note, s Settings) error {
	fields := logrus.Fields{
		"note":       note.String(),
		"instrument": s.Instrument.String(),
		"policy":     e.policy.String(),
	}

	if e.policy != QueueWhenSuspended {
		e.log.WithFields(fields).Info("trigger dropped, context suspended")
		return fmt.Errorf("%w: context suspended", ErrBackendUnavailable)
	}

	e.mu.Lock()
	if len(e.queue) >= e.queueLimit {
		dropped := e.queue[0]
		e.queue = append(e.queue[:0], e.queue[1:]...)
		e.log.WithField("note", dropped.note.String()).Warn("deferred queue full, dropping oldest")
	}
	e.queue = append(e.queue, deferred{note: note, settings: s})
	fields["pending"] = len(e.queue)
	e.mu.Unlock()

	e.log.WithFields(fields).Debug("trigger deferred")
	return ErrTriggerDeferred
}

func (e *Engine) stateChanged(s graph.State) {
	e.mu.Lock()
	queue := e.queue
	e.queue = nil
	e.mu.Unlock()

	if len(queue) == 0 {
		return
	}

	switch s {
	case graph.StateRunning:
		e.log.WithField("count", len(queue)).Info("replaying deferred triggers")
		for _, d := range queue {
			if _, err := e.Trigger(d.note, d.settings); err != nil {
				e.log.WithError(err).WithField("note", d.note.String()).Warn("deferred trigger failed")
			}
		}
	case graph.StateClosed:
		e.log.WithField("count", len(queue)).Info("context closed, deferred triggers dropped")
	default:
		e.mu.Lock()
		e.queue = append(queue, e.queue...)
		e.mu.Unlock()
	}
}
