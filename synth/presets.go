package synth

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadRecipes reads a YAML preset file mapping instrument names to recipes.
// Every recipe is validated; unknown instruments and fields are rejected.
//
//	sitar:
//	  duration: 2
//	  oscillators:
//	    - waveform: sawtooth
//	  filter: {type: lowpass, cutoff_ratio: 1, q: 5}
//	  envelope:
//	    start: 1
//	    points: [{time: 2, level: 0, shape: exponential}]
func LoadRecipes(r io.Reader) (Book, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw map[string]Recipe
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty preset file", ErrInvalidRecipe)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}

	book := make(Book, len(raw))
	for name, rec := range raw {
		inst, err := ParseInstrument(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", inst, err)
		}
		book[inst] = rec
	}
	return book, nil
}

// WriteRecipes encodes book in the LoadRecipes format.
func WriteRecipes(w io.Writer, book Book) error {
	raw := make(map[string]Recipe, len(book))
	for inst, rec := range book {
		raw[inst.String()] = rec
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	return enc.Close()
}

// Instruments returns the instruments present in the book, in
// declaration order.
func (b Book) Instruments() []Instrument {
	out := make([]Instrument, 0, len(b))
	for inst := range b {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
