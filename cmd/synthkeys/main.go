// Command synthkeys plays and renders the instrument voices.
//
// Usage:
//
//	synthkeys [flags]
//
// Without a mode flag it opens the terminal as a piano keyboard and plays
// through the default audio device.
//
// Examples:
//
//	synthkeys -instrument sitar
//	synthkeys -midi "Keystation"
//	synthkeys -render out.wav -notes C4,E4,G4,C5 -instrument santur
//	synthkeys -render out.wav -notes A4 -analyze
//	synthkeys -list
//	synthkeys -dump-presets > presets.yaml
//	synthkeys -presets presets.yaml -instrument harmonium
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/graph"
	"github.com/cwbudde/algo-synth/input"
	"github.com/cwbudde/algo-synth/synth"
)

type options struct {
	instrument string
	volume     string
	rate       int
	presets    string
	notes      string
	gap        float64
	render     string
	pcm16      bool
	analyze    bool
	midi       string
	velocity   bool
	queue      bool
}

func main() {
	var o options
	flag.StringVar(&o.instrument, "instrument", synth.DefaultInstrument.String(), "instrument: "+instrumentNames())
	flag.StringVar(&o.volume, "volume", "0.5", "volume in [0,1]")
	flag.IntVar(&o.rate, "rate", 48000, "sample rate in Hz")
	flag.StringVar(&o.presets, "presets", "", "YAML recipe file overriding built-in instruments")
	flag.StringVar(&o.notes, "notes", "A4", "comma-separated notes for -render")
	flag.Float64Var(&o.gap, "gap", 0.4, "seconds between rendered notes")
	flag.StringVar(&o.render, "render", "", "render -notes offline to this WAV file")
	flag.BoolVar(&o.pcm16, "pcm16", false, "write 16-bit PCM instead of float WAV")
	flag.BoolVar(&o.analyze, "analyze", false, "print pitch and level of the rendered notes")
	flag.StringVar(&o.midi, "midi", "", "play from the first MIDI input whose name has this prefix")
	flag.BoolVar(&o.velocity, "velocity", true, "scale volume by MIDI velocity")
	flag.BoolVar(&o.queue, "queue", false, "queue notes while the output is suspended instead of dropping them")
	list := flag.Bool("list", false, "list instruments and their recipes")
	dump := flag.Bool("dump-presets", false, "write the recipe book as YAML to stdout")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: synthkeys [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Plays instrument voices from the terminal keyboard or MIDI,\n")
		fmt.Fprintf(os.Stderr, "or renders notes to a WAV file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  synthkeys -instrument sitar\n")
		fmt.Fprintf(os.Stderr, "  synthkeys -render out.wav -notes C4,E4,G4 -analyze\n")
		fmt.Fprintf(os.Stderr, "  synthkeys -list\n")
	}
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	book, err := loadBook(o.presets)
	if err != nil {
		fatal(log, err)
	}

	switch {
	case *list:
		printList(book)
	case *dump:
		if err := synth.WriteRecipes(os.Stdout, book); err != nil {
			fatal(log, err)
		}
	case o.render != "":
		if err := renderFile(o, book, log); err != nil {
			fatal(log, err)
		}
	case o.midi != "":
		if err := playMIDI(o, book, log); err != nil {
			fatal(log, err)
		}
	default:
		if err := playTerminal(o, book, log); err != nil {
			fatal(log, err)
		}
	}
}

func fatal(log logrus.FieldLogger, err error) {
	log.WithField("error", err).Error("synthkeys failed")
	os.Exit(1)
}

func instrumentNames() string {
	var names []string
	for _, inst := range synth.Instruments() {
		names = append(names, inst.String())
	}
	return strings.Join(names, ", ")
}

func loadBook(path string) (synth.Book, error) {
	book := synth.DefaultBook()
	if path == "" {
		return book, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	loaded, err := synth.LoadRecipes(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for inst, r := range loaded {
		book[inst] = r
	}
	return book, nil
}

// session is the engine wiring shared by every mode.
type session struct {
	ctx    *graph.Context
	engine *synth.Engine
	player *input.Player
}

func newSession(o options, book synth.Book, log logrus.FieldLogger, opts ...input.Option) (*session, error) {
	ctx := graph.NewContext(core.WithSampleRate(float64(o.rate)))

	policy := synth.DropWhenSuspended
	if o.queue {
		policy = synth.QueueWhenSuspended
	}
	engine, err := synth.NewEngine(ctx,
		synth.WithLogger(log),
		synth.WithRecipes(book),
		synth.WithSuspendPolicy(policy),
	)
	if err != nil {
		return nil, err
	}

	sel := input.NewSelection(log)
	sel.SetInstrument(o.instrument)
	if _, err := sel.SetVolume(o.volume); err != nil {
		return nil, err
	}

	opts = append([]input.Option{input.WithLogger(log)}, opts...)
	return &session{
		ctx:    ctx,
		engine: engine,
		player: input.NewPlayer(engine, sel, opts...),
	}, nil
}

func printList(book synth.Book) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Instrument\tOscillators\tFilter\tVibrato\tDuration [s]\n")
	_, _ = fmt.Fprintf(tw, "----------\t-----------\t------\t-------\t------------\n")
	for _, inst := range book.Instruments() {
		r := book[inst]

		var oscs []string
		for _, part := range r.Oscillators {
			s := part.Waveform.String()
			if part.Ratio != 0 && part.Ratio != 1 {
				s += fmt.Sprintf("×%g", part.Ratio)
			}
			if part.DetuneHz != 0 {
				s += fmt.Sprintf("%+gHz", part.DetuneHz)
			}
			oscs = append(oscs, s)
		}

		filter := "-"
		if f := r.Filter; f != nil {
			switch {
			case f.CutoffHz > 0:
				filter = fmt.Sprintf("%s %gHz", f.Type, f.CutoffHz)
			default:
				filter = fmt.Sprintf("%s %g×f", f.Type, f.CutoffRatio)
			}
			if len(f.Sweep) > 0 {
				filter += " sweep"
			}
		}

		vibrato := "-"
		if v := r.Vibrato; v != nil {
			vibrato = fmt.Sprintf("%gHz ±%gHz", v.RateHz, v.DepthHz)
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\n", inst, strings.Join(oscs, " + "), filter, vibrato, r.Duration)
	}
	_ = tw.Flush()
}
