package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-synth/dsp/graph"
	"github.com/cwbudde/algo-synth/input"
	"github.com/cwbudde/algo-synth/internal/audioout"
	"github.com/cwbudde/algo-synth/internal/termkeys"
	"github.com/cwbudde/algo-synth/synth"
)

const volumeStep = 0.1

// crlf rewrites newlines for a terminal in raw mode.
type crlf struct{ w io.Writer }

func (c crlf) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

func startOutput(s *session, rate int) (*audioout.Player, *audioout.Stream, error) {
	stream := audioout.NewStream(s.ctx)
	player, err := audioout.NewPlayer(stream, rate)
	if err != nil {
		return nil, nil, err
	}
	player.Start()
	return player, stream, nil
}

func logLevels(log logrus.FieldLogger, stream *audioout.Stream, s *session) {
	peak, rms := stream.Levels()
	log.WithFields(logrus.Fields{
		"peak":   peak,
		"rms":    rms,
		"voices": s.engine.ActiveVoices(),
		"nodes":  s.ctx.NodeCount(),
	}).Debug("output levels")
}

func playTerminal(o options, book synth.Book, log *logrus.Logger) error {
	keys, err := termkeys.Open(0)
	if err != nil {
		return err
	}
	defer keys.Stop()
	log.SetOutput(crlf{os.Stderr})

	s, err := newSession(o, book, log)
	if err != nil {
		return err
	}
	player, stream, err := startOutput(s, o.rate)
	if err != nil {
		return err
	}
	defer player.Close()

	kb := input.NewKeyboard(s.player, nil)
	sel := s.player.Selection()
	printHelp(os.Stdout, kb, sel.Settings())

	keys.Start()
	for ev := range keys.Events() {
		switch ev.Kind {
		case termkeys.Quit:
			logLevels(log, stream, s)
			return nil
		case termkeys.KeyUp:
			kb.KeyUp(ev.Key)
		case termkeys.KeyDown:
			if handleControl(ev, s, sel, log) {
				continue
			}
			kb.KeyDown(ev.Key, ev.Repeat)
		}
	}
	return nil
}

// handleControl applies instrument, volume and suspend keys. It reports
// whether ev was consumed.
func handleControl(ev termkeys.Event, s *session, sel *input.Selection, log logrus.FieldLogger) bool {
	if ev.Repeat {
		return ev.Key == "-" || ev.Key == "="
	}
	insts := synth.Instruments()
	if i, err := strconv.Atoi(ev.Key); err == nil && i >= 1 && i <= len(insts) {
		inst := sel.SetInstrument(insts[i-1].String())
		log.WithField("instrument", inst.String()).Info("instrument selected")
		return true
	}

	switch ev.Key {
	case "-", "=":
		step := volumeStep
		if ev.Key == "-" {
			step = -step
		}
		v, _ := sel.SetVolume(strconv.FormatFloat(sel.Volume()+step, 'f', 2, 64))
		log.WithField("volume", v).Info("volume")
		return true
	case " ":
		var err error
		if s.ctx.State() == graph.StateRunning {
			err = s.ctx.Suspend()
		} else {
			err = s.ctx.Resume()
		}
		if err != nil {
			log.WithField("error", err).Warn("state change failed")
		}
		log.WithField("state", s.ctx.State().String()).Info("output")
		return true
	}
	return false
}

func printHelp(w io.Writer, kb *input.Keyboard, settings synth.Settings) {
	var row []string
	for _, k := range input.Keys(synth.Note{Class: synth.C, Octave: 4}, 15) {
		sym, _ := kb.Shortcut(k.Note)
		row = append(row, fmt.Sprintf("%s=%s", sym, k.Note))
	}

	var insts []string
	for i, inst := range synth.Instruments() {
		insts = append(insts, fmt.Sprintf("%d=%s", i+1, inst))
	}

	fmt.Fprintf(w, "keys:        %s\r\n", strings.Join(row, " "))
	fmt.Fprintf(w, "instruments: %s\r\n", strings.Join(insts, " "))
	fmt.Fprintf(w, "volume: - and =, suspend/resume: space, quit: esc or ctrl-c\r\n")
	fmt.Fprintf(w, "playing %s at volume %.2f\r\n", settings.Instrument, settings.Volume)
}

func playMIDI(o options, book synth.Book, log *logrus.Logger) error {
	in, closeMIDI, err := openMIDI(o.midi)
	if err != nil {
		return err
	}
	defer closeMIDI()

	s, err := newSession(o, book, log)
	if err != nil {
		return err
	}
	player, stream, err := startOutput(s, o.rate)
	if err != nil {
		return err
	}
	defer player.Close()

	stop, err := input.NewMIDI(s.player, o.velocity).ListenMIDI(in)
	if err != nil {
		return err
	}
	defer stop()

	log.WithFields(logrus.Fields{
		"input":      in.String(),
		"instrument": s.player.Selection().Settings().Instrument.String(),
	}).Info("listening, ctrl-c to quit")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig

	logLevels(log, stream, s)
	return nil
}
