// Package texts provides the sample texts typed in each difficulty tier.
package texts

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/tiertype/internal/model"
)

var builtin = map[model.Difficulty][]string{
	model.Easy: {
		"cat hat run sun big fun",
		"the dog can see the man",
		"jump play sing look work",
		"one two red blue good nice",
		"like make come take give go",
	},
	model.Medium: {
		"The quick brown fox jumps over the lazy dog.",
		"Pack my box with five dozen liquor jugs.",
		"How vexingly quick daft zebras jump!",
		"Bright vixens jump; dozy fowl quack.",
		"Sphinx of black quartz, judge my vow.",
	},
	model.Hard: {
		"Cryptography is the practice and study of techniques for secure communication in the presence of third parties called adversaries.",
		"Go is a statically typed, compiled language whose goroutines and channels make concurrent programs straightforward to write and reason about.",
		"The phenomenon of quantum entanglement describes a situation where particles become interconnected and instantaneously affect each other's states, regardless of distance.",
		"Object-oriented programming paradigms emphasize modularity and reusability, structuring software as a collection of interacting objects.",
		"Artificial neural networks, inspired by the human brain, are powerful tools for machine learning, capable of recognizing complex patterns.",
	},
}

// Catalog holds the texts available per tier.
type Catalog map[model.Difficulty][]string

// Builtin returns a copy of the bundled texts.
func Builtin() Catalog {
	c := make(Catalog, len(builtin))
	for d, list := range builtin {
		c[d] = append([]string(nil), list...)
	}
	return c
}

// Picker selects random texts from a catalog.
type Picker struct {
	catalog Catalog
	rnd     *rand.Rand
}

// NewPicker returns a Picker seeded with the current time.
func NewPicker(c Catalog) *Picker {
	return &Picker{catalog: c, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededPicker returns a deterministic Picker.
func NewSeededPicker(c Catalog, seed int64) *Picker {
	return &Picker{catalog: c, rnd: rand.New(rand.NewSource(seed))}
}

// Pick returns a random text for d. A tier without texts falls back to Easy,
// then to the bundled Easy texts.
func (p *Picker) Pick(d model.Difficulty) string {
	list := p.catalog[d]
	if len(list) == 0 {
		list = p.catalog[model.Easy]
	}
	if len(list) == 0 {
		list = builtin[model.Easy]
	}
	return list[p.rnd.Intn(len(list))]
}
