package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-synth/internal/wav"
	"github.com/cwbudde/algo-synth/measure/level"
	"github.com/cwbudde/algo-synth/measure/pitch"
	"github.com/cwbudde/algo-synth/synth"
)

// renderedNote locates one note in a render.
type renderedNote struct {
	note  synth.Note
	start int
	end   int
}

func parseNotes(list string) ([]synth.Note, error) {
	var out []synth.Note
	for _, f := range strings.Split(list, ",") {
		if strings.TrimSpace(f) == "" {
			continue
		}
		n, err := synth.ParseNote(f)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no notes in %q", list)
	}
	return out, nil
}

// renderNotes triggers notes gap seconds apart and renders until the last
// voice has ended.
func renderNotes(s *session, notes []synth.Note, gap float64) ([]float32, []renderedNote, error) {
	if gap <= 0 {
		return nil, nil, fmt.Errorf("gap must be > 0: %v", gap)
	}

	var out []float32
	var marks []renderedNote
	for _, n := range notes {
		start := len(out)
		v := s.player.Play(n)
		if v == nil {
			return nil, nil, fmt.Errorf("note %s was not triggered", n)
		}
		// Analysis stops where the next note begins.
		span := min(gap, v.Stop()-v.Start())
		marks = append(marks, renderedNote{note: n, start: start, end: start + int(span*s.ctx.SampleRate())})
		out = append(out, s.ctx.RenderSeconds(gap)...)
	}

	for s.engine.ActiveVoices() > 0 {
		out = append(out, s.ctx.RenderSeconds(0.1)...)
	}
	for i := range marks {
		marks[i].end = min(marks[i].end, len(out))
	}
	return out, marks, nil
}

func renderFile(o options, book synth.Book, log logrus.FieldLogger) error {
	notes, err := parseNotes(o.notes)
	if err != nil {
		return err
	}
	s, err := newSession(o, book, log)
	if err != nil {
		return err
	}

	out, marks, err := renderNotes(s, notes, o.gap)
	if err != nil {
		return err
	}

	f, err := os.Create(o.render)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := wav.Encode(w, out, wav.Format{SampleRate: o.rate, Channels: 1, PCM16: o.pcm16}); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"file":       o.render,
		"notes":      len(notes),
		"seconds":    float64(len(out)) / float64(o.rate),
		"instrument": s.player.Selection().Settings().Instrument.String(),
	}).Info("rendered")

	if o.analyze {
		return printAnalysis(os.Stdout, out, marks, float64(o.rate))
	}
	return nil
}

func printAnalysis(w io.Writer, out []float32, marks []renderedNote, sampleRate float64) error {
	est, err := pitch.NewEstimator(pitch.Config{SampleRate: sampleRate})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Note\tExpected [Hz]\tEstimated [Hz]\tCents\tPeak [dBFS]\tRMS [dBFS]\n")
	_, _ = fmt.Fprintf(tw, "----\t-------------\t--------------\t-----\t-----------\t----------\n")
	for _, m := range marks {
		seg := out[m.start:m.end]
		var meter level.Meter
		meter.Process(seg)

		x := make([]float64, len(seg))
		for i, v := range seg {
			x[i] = float64(v)
		}

		want := m.note.Frequency()
		res, err := est.Estimate(x)
		if err != nil {
			_, _ = fmt.Fprintf(tw, "%s\t%.2f\t-\t-\t%.1f\t%.1f\n", m.note, want, meter.PeakDB(), meter.RMSDB())
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%+.1f\t%.1f\t%.1f\n",
			m.note, want, res.Frequency, cents(res.Frequency, want), meter.PeakDB(), meter.RMSDB())
	}
	return tw.Flush()
}

func cents(got, want float64) float64 {
	return 1200 * math.Log2(got/want)
}
