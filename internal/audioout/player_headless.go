//go:build headless

package audioout

import (
	"sync"
	"time"
)

// Player pulls a Source in real time without an output device.
type Player struct {
	stream     *Stream
	sampleRate int
	started    bool
	stop       chan struct{}
	done       chan struct{}
	mu         sync.Mutex
}

// NewPlayer returns a device-less player.
func NewPlayer(stream *Stream, sampleRate int) (*Player, error) {
	return &Player{stream: stream, sampleRate: sampleRate}, nil
}

// Start begins pulling the stream every 10 ms.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)
		buf := make([]byte, 4*max(1, p.sampleRate/100))
		t := time.NewTicker(10 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				_, _ = p.stream.Read(buf)
			}
		}
	}(p.stop, p.done)
}

// IsStarted reports whether the pull loop runs.
func (p *Player) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Close stops the pull loop.
func (p *Player) Close() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	close(p.stop)
	done := p.done
	p.mu.Unlock()

	<-done
	return nil
}
