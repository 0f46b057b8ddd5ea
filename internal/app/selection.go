package app

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/morph"
	"github.com/ayusman/mudra/internal/shape"
)

// Selection limits.
const (
	MaxParticles  = 100000
	MaxTextLength = 64
)

// ErrInvalidSelection is returned when a selection cannot be applied.
var ErrInvalidSelection = errors.New("invalid selection")

// Settings keys the selection is persisted under.
const (
	settingShape = "selection.shape"
	settingColor = "selection.color"
	settingCount = "selection.count"
	settingText  = "selection.text"
)

// Selection is what the UI chooses: the shape, its color, how many
// particles and the text rendered by the text shape.
type Selection struct {
	Shape shape.Kind `json:"shape"`
	Color string     `json:"color"`
	Count int        `json:"count"`
	Text  string     `json:"text"`
}

// Validate reports whether s can be rendered.
func (s Selection) Validate() error {
	if !s.Shape.Valid() {
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidSelection, s.Shape)
	}
	if _, err := morph.ParseColor(s.Color); err != nil {
		return fmt.Errorf("%w: color %q is not #RRGGBB", ErrInvalidSelection, s.Color)
	}
	if s.Count < 1 || s.Count > MaxParticles {
		return fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidSelection, MaxParticles)
	}
	if utf8.RuneCountInString(s.Text) > MaxTextLength {
		return fmt.Errorf("%w: text longer than %d characters", ErrInvalidSelection, MaxTextLength)
	}
	return nil
}

func (s Selection) settings() map[string]string {
	return map[string]string{
		settingShape: string(s.Shape),
		settingColor: s.Color,
		settingCount: strconv.Itoa(s.Count),
		settingText:  s.Text,
	}
}

// merge overlays the persisted settings onto s. Missing or malformed keys
// keep the value from s.
func (s Selection) merge(values map[string]string) Selection {
	if v, ok := values[settingShape]; ok {
		if k, err := shape.ParseKind(v); err == nil {
			s.Shape = k
		}
	}
	if v, ok := values[settingColor]; ok {
		s.Color = v
	}
	if v, ok := values[settingCount]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			s.Count = n
		}
	}
	if v, ok := values[settingText]; ok {
		s.Text = v
	}
	return s
}

// cloudKey identifies the inputs a target cloud was generated from.
type cloudKey struct {
	shape shape.Kind
	count int
	text  string
}

func (s Selection) cloudKey() cloudKey {
	return cloudKey{shape: s.Shape, count: s.Count, text: s.Text}
}

// selectionHolder guards the active selection. The debouncer swaps the look
// from the simulation tick while the UI replaces the whole selection.
type selectionHolder struct {
	mu  sync.RWMutex
	sel Selection
}

func (h *selectionHolder) Get() Selection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sel
}

func (h *selectionHolder) Set(s Selection) {
	h.mu.Lock()
	h.sel = s
	h.mu.Unlock()
}

func (h *selectionHolder) Look() gesture.Look {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return gesture.Look{Shape: h.sel.Shape, Color: h.sel.Color}
}

func (h *selectionHolder) ApplyLook(l gesture.Look) {
	h.mu.Lock()
	h.sel.Shape = l.Shape
	h.sel.Color = l.Color
	h.mu.Unlock()
}
