// Package shape generates the target point clouds the particle system morphs towards.
package shape

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/vmath"
)

// ErrUnknownKind is returned when parsing an unrecognized shape name.
var ErrUnknownKind = errors.New("unknown shape")

// MaxRadius bounds every generated point's distance from the origin.
const MaxRadius = 5.0

// Kind names a shape in the catalog.
type Kind string

const (
	Sphere    Kind = "sphere"
	Heart     Kind = "heart"
	Flower    Kind = "flower"
	Saturn    Kind = "saturn"
	Buddha    Kind = "buddha"
	Fireworks Kind = "fireworks"
	Galaxy    Kind = "galaxy"
	DNA       Kind = "dna"
	Text      Kind = "text"
)

// Kinds returns the full catalog in display order.
func Kinds() []Kind {
	return []Kind{Sphere, Heart, Flower, Saturn, Buddha, Fireworks, Galaxy, DNA, Text}
}

// Valid reports whether k is in the catalog.
func (k Kind) Valid() bool {
	for _, c := range Kinds() {
		if c == k {
			return true
		}
	}
	return false
}

// ParseKind converts a name into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Cloud is a fixed set of target points. Once generated it is never mutated.
type Cloud []vmath.Vec3

// Options configures a Library.
type Options struct {
	// FontPath points at a TrueType or OpenType font tried first for the
	// text shape. System CJK faces and the embedded Go Bold follow it.
	FontPath string
	// Seed makes generation reproducible. Zero seeds from the clock.
	Seed uint64
}

// Library generates clouds for every Kind. Each call draws fresh random
// numbers, so repeated calls give different clouds of the same archetype.
type Library struct {
	mu   sync.Mutex
	rng  *rand.Rand
	text *TextRasterizer
}

// NewLibrary creates a Library, loading the text font.
func NewLibrary(opts Options) (*Library, error) {
	text, err := NewTextRasterizer(opts.FontPath)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Library{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		text: text,
	}, nil
}

// Generate returns exactly count points for kind. The text argument is only
// used by the Text kind. Unknown kinds fall back to a sphere.
func (l *Library) Generate(kind Kind, count int, text string) Cloud {
	if count < 1 {
		return Cloud{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if kind == Text {
		return l.text.Cloud(l.rng, text, count)
	}

	gen, ok := generators[kind]
	if !ok {
		gen = newSphere
	}
	sample := gen(l.rng, count)

	cloud := make(Cloud, count)
	for i := range cloud {
		cloud[i] = bound(sample(i))
	}
	return cloud
}

// bound pulls points outside MaxRadius back onto the bounding sphere.
func bound(p vmath.Vec3) vmath.Vec3 {
	l := vmath.Len(p)
	if l <= MaxRadius {
		return p
	}
	return vmath.Scale(p, MaxRadius/l)
}
