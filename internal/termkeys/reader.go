package termkeys

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin is not a terminal.
var ErrNotTerminal = errors.New("termkeys: stdin is not a terminal")

const (
	ctrlC = 0x03
	ctrlD = 0x04
	esc   = 0x1b
)

// Reader puts the terminal in raw mode and emits key events.
type Reader struct {
	in      io.Reader
	fd      int
	tracker *Tracker
	tick    time.Duration

	events chan Event
	stopCh chan struct{}
	done   chan struct{}

	oldState *term.State
	stopOnce sync.Once
}

// Open switches stdin to raw mode.
func Open(releaseAfter time.Duration) (*Reader, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	r := newReader(os.Stdin, releaseAfter)
	r.fd = fd
	r.oldState = old
	return r, nil
}

func newReader(in io.Reader, releaseAfter time.Duration) *Reader {
	return &Reader{
		in:      in,
		fd:      -1,
		tracker: NewTracker(releaseAfter),
		tick:    20 * time.Millisecond,
		events:  make(chan Event, 64),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Events returns the event channel. It is closed after Quit or Stop.
func (r *Reader) Events() <-chan Event { return r.events }

// Start begins reading.
func (r *Reader) Start() {
	bytesCh := make(chan byte, 64)

	go func() {
		buf := make([]byte, 16)
		for {
			n, err := r.in.Read(buf)
			for _, b := range buf[:n] {
				select {
				case bytesCh <- b:
				case <-r.stopCh:
					return
				}
			}
			if err != nil {
				close(bytesCh)
				return
			}
		}
	}()

	go r.loop(bytesCh)
}

func (r *Reader) loop(bytesCh <-chan byte) {
	defer close(r.done)
	defer close(r.events)

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.emit(r.tracker.ReleaseAll()...)
			return
		case now := <-ticker.C:
			r.emit(r.tracker.Expire(now)...)
		case b, ok := <-bytesCh:
			if !ok || b == ctrlC || b == ctrlD || b == esc {
				r.emit(r.tracker.ReleaseAll()...)
				r.emit(Event{Kind: Quit})
				return
			}
			if b == '\r' {
				b = '\n'
			}
			if b < 0x20 && b != '\n' {
				continue
			}
			key := strings.ToLower(string(rune(b)))
			r.emit(r.tracker.Press(key, time.Now()))
		}
	}
}

func (r *Reader) emit(evs ...Event) {
	for _, ev := range evs {
		select {
		case r.events <- ev:
		case <-r.stopCh:
			return
		}
	}
}

// Stop ends reading and restores the terminal.
func (r *Reader) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		close(r.stopCh)
		<-r.done
		if r.oldState != nil {
			err = term.Restore(r.fd, r.oldState)
		}
	})
	return err
}
