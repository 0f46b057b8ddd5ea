package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/shape"
)

// Default debounce delays.
const (
	DefaultConfirmDelay = 300 * time.Millisecond
	DefaultReleaseDelay = 1000 * time.Millisecond
)

// Look is the shape and color pair a special gesture switches to.
type Look struct {
	Shape shape.Kind `json:"shape"`
	Color string     `json:"color"`
}

// Selector exposes the active look to the debouncer.
type Selector interface {
	Look() Look
	ApplyLook(Look)
}

// DefaultMapping returns the look applied for each special gesture.
func DefaultMapping() map[Type]Look {
	return map[Type]Look{
		Victory:  {Shape: shape.Text, Color: "#FFD700"},
		Love:     {Shape: shape.Heart, Color: "#FF69B4"},
		ThumbsUp: {Shape: shape.Fireworks, Color: "#FF3B30"},
		Point:    {Shape: shape.Saturn, Color: "#00FFFF"},
	}
}

// DebounceConfig configures a Debouncer. Zero values fall back to defaults.
type DebounceConfig struct {
	Confirm time.Duration `mapstructure:"confirm"`
	Release time.Duration `mapstructure:"release"`
	Mapping map[Type]Look `mapstructure:"-"`
}

// Debouncer smooths raw per-frame gestures into a committed gesture.
//
// Base gestures commit immediately. A special gesture must be held for the
// confirm delay; committing it from a base gesture saves the active look and
// applies the gesture's look. Leaving a special gesture waits for the release
// delay, then commits None and restores the saved look. A new raw gesture
// cancels whatever confirm or release is pending.
//
// A Debouncer is not safe for concurrent use; it belongs to the simulation tick.
type Debouncer struct {
	cfg      DebounceConfig
	sel      Selector
	current  Type
	lastRaw  Type
	pending  Deferred
	saved    Look
	onCommit func(from, to Type)
}

// NewDebouncer creates a Debouncer that reads and writes the look through sel.
func NewDebouncer(sel Selector, cfg DebounceConfig) *Debouncer {
	if cfg.Confirm <= 0 {
		cfg.Confirm = DefaultConfirmDelay
	}
	if cfg.Release <= 0 {
		cfg.Release = DefaultReleaseDelay
	}
	if cfg.Mapping == nil {
		cfg.Mapping = DefaultMapping()
	}
	return &Debouncer{
		cfg:     cfg,
		sel:     sel,
		current: None,
		lastRaw: None,
	}
}

// OnCommit registers fn to be called whenever the committed gesture changes.
func (d *Debouncer) OnCommit(fn func(from, to Type)) {
	d.onCommit = fn
}

// Current returns the committed gesture.
func (d *Debouncer) Current() Type {
	return d.current
}

// Pending reports whether a confirm or release is waiting to fire.
func (d *Debouncer) Pending() bool {
	return d.pending.Pending()
}

// Update feeds the raw gesture observed at now and returns the committed gesture.
// Transitions are evaluated only when raw differs from the previous raw value,
// so holding a gesture does not restart its timer.
func (d *Debouncer) Update(raw Type, now time.Time) Type {
	d.pending.Fire(now)

	if raw != d.lastRaw {
		d.lastRaw = raw
		d.transition(raw, now)
	}

	return d.current
}

func (d *Debouncer) transition(raw Type, now time.Time) {
	d.pending.Cancel()

	switch {
	case raw == d.current:
		// The excursion ended before its timer fired.
	case raw.Special():
		d.pending.Arm(now, d.cfg.Confirm, func() { d.confirm(raw) })
	case d.current.Special():
		d.pending.Arm(now, d.cfg.Release, d.release)
	default:
		d.commit(raw)
	}
}

func (d *Debouncer) confirm(g Type) {
	if !d.current.Special() {
		d.saved = d.sel.Look()
	}
	if look, ok := d.cfg.Mapping[g]; ok {
		d.sel.ApplyLook(look)
	}
	d.commit(g)
}

func (d *Debouncer) release() {
	d.sel.ApplyLook(d.saved)
	d.commit(None)
}

func (d *Debouncer) commit(g Type) {
	from := d.current
	d.current = g
	if from != g && d.onCommit != nil {
		d.onCommit(from, g)
	}
}
