// Package app wires hand tracking, gesture debouncing, shape generation and
// the morph engine into one simulation loop.
package app

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/morph"
	"github.com/ayusman/mudra/internal/shape"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tracker"
)

var (
	// ErrNoTracker is returned by tracking calls when no tracker is configured.
	ErrNoTracker = errors.New("hand tracking unavailable")
	// ErrLocalSignal is returned by SetSignal while hand state comes from the camera.
	ErrLocalSignal = errors.New("signal source is the local camera")
	// ErrInvalidSignal is returned for out-of-range remote signals.
	ErrInvalidSignal = errors.New("invalid signal")
)

// Tracker is the hand tracking service the app drives.
type Tracker interface {
	Start(source string) error
	Stop()
	Running() bool
	Preview() []byte
}

// Config holds the application dependencies. Store, Tracker and Hooks are
// optional.
type Config struct {
	Selection Selection
	FPS       int
	Debounce  gesture.DebounceConfig
	Morph     morph.Tunables
	// Seed fixes shape and engine randomness. Zero seeds from the clock.
	Seed     uint64
	FontPath string

	// Source is the camera source handed to the tracker.
	Source string
	// Remote makes SetSignal the only source of hand state.
	Remote  bool
	Cell    *gesture.StateCell
	Tracker Tracker

	Store        *store.Store
	HookRegistry *hook.Registry
	HookExecutor *hook.Executor

	Logger zerolog.Logger
}

// Signal is a hand state reported by an external source.
type Signal struct {
	Tension  float64      `json:"tension"`
	Detected bool         `json:"detected"`
	Gesture  gesture.Type `json:"gesture,omitempty"`
}

// Snapshot is the latest simulation state for the UI.
type Snapshot struct {
	Hand         gesture.HandState  `json:"hand"`
	Gesture      gesture.Type       `json:"gesture"`
	Selection    Selection          `json:"selection"`
	Tracking     bool               `json:"tracking"`
	Remote       bool               `json:"remote"`
	Particles    int                `json:"particles"`
	Accumulators morph.Accumulators `json:"accumulators"`
	Ticks        uint64             `json:"ticks"`
}

// App runs the simulation. Tick must only be called from one goroutine,
// normally Run; every other method is safe for concurrent use.
type App struct {
	config Config
	logger zerolog.Logger

	selection *selectionHolder
	cell      *gesture.StateCell
	debouncer *gesture.Debouncer
	library   *shape.Library
	engine    *morph.Engine
	journal   *journal

	// Owned by the tick.
	epoch time.Time
	built cloudKey
	hand  gesture.HandState

	mu       sync.RWMutex
	snapshot Snapshot
	subs     map[chan morph.Frame]struct{}
}

// New creates an App. The persisted selection, if any, overrides
// config.Selection.
func New(config Config) (*App, error) {
	if config.FPS <= 0 {
		config.FPS = 60
	}
	if config.Cell == nil {
		config.Cell = &gesture.StateCell{}
	}

	logger := config.Logger.With().Str("component", "app").Logger()

	sel := config.Selection
	if config.Store != nil {
		values, err := config.Store.Settings().All()
		if err != nil {
			return nil, fmt.Errorf("load selection: %w", err)
		}
		if merged := sel.merge(values); merged.Validate() == nil {
			sel = merged
		} else if len(values) > 0 {
			logger.Warn().Msg("persisted selection is invalid, using configured one")
		}
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	library, err := shape.NewLibrary(shape.Options{FontPath: config.FontPath, Seed: config.Seed})
	if err != nil {
		return nil, fmt.Errorf("load shapes: %w", err)
	}

	a := &App{
		config:    config,
		logger:    logger,
		selection: &selectionHolder{sel: sel},
		cell:      config.Cell,
		library:   library,
		engine:    morph.NewEngine(morph.Config{Tunables: config.Morph, FPS: config.FPS, Seed: config.Seed}),
		epoch:     time.Now(),
		hand:      gesture.NeutralState(),
		subs:      make(map[chan morph.Frame]struct{}),
	}

	a.debouncer = gesture.NewDebouncer(a.selection, config.Debounce)
	a.debouncer.OnCommit(a.onCommit)
	a.journal = newJournal(config.Store, config.HookRegistry, config.HookExecutor, logger)

	a.snapshot = Snapshot{
		Hand:      a.hand,
		Gesture:   gesture.None,
		Selection: sel,
		Remote:    config.Remote,
	}

	return a, nil
}

// Close stops tracking and drains pending journal work.
func (a *App) Close() {
	if a.config.Tracker != nil {
		a.config.Tracker.Stop()
	}
	a.journal.close()
}

// Tick advances the simulation to now. delta is the seconds elapsed since
// the previous tick.
func (a *App) Tick(now time.Time, delta float64) morph.Frame {
	a.hand = a.cell.Load()
	committed := a.debouncer.Update(a.hand.Gesture, now)

	sel := a.selection.Get()
	if key := sel.cloudKey(); key != a.built || a.engine.Len() == 0 {
		cloud := a.library.Generate(sel.Shape, sel.Count, sel.Text)
		a.engine.Resize(sel.Count)
		a.engine.SetTarget(sel.Shape, cloud)
		a.built = key
	}

	frame := a.engine.Step(morph.Input{
		Tension: a.hand.Tension,
		Time:    now.Sub(a.epoch).Seconds(),
		Delta:   delta,
	})
	frame.Display.Color = sel.Color

	a.mu.Lock()
	a.snapshot.Hand = a.hand
	a.snapshot.Gesture = committed
	a.snapshot.Selection = sel
	a.snapshot.Particles = a.engine.Len()
	a.snapshot.Accumulators = a.engine.Accumulators()
	a.snapshot.Ticks++
	a.mu.Unlock()

	return frame
}

// onCommit runs inside Tick whenever the debounced gesture changes.
func (a *App) onCommit(from, to gesture.Type) {
	look := a.selection.Look()
	a.logger.Info().
		Str("from", string(from)).
		Str("to", string(to)).
		Str("shape", string(look.Shape)).
		Msg("gesture committed")

	a.journal.submit(commit{
		gesture:  to,
		previous: from,
		shape:    look.Shape,
		color:    look.Color,
		tension:  a.hand.Tension,
	})
}

// Snapshot returns the latest simulation state.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	s := a.snapshot
	a.mu.RUnlock()

	s.Tracking = a.Tracking()
	return s
}

// Selection returns the active selection, including any look applied by a
// committed gesture.
func (a *App) Selection() Selection {
	return a.selection.Get()
}

// SetSelection validates, persists and applies sel.
func (a *App) SetSelection(sel Selection) error {
	if err := sel.Validate(); err != nil {
		return err
	}

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetMany(sel.settings()); err != nil {
			return fmt.Errorf("persist selection: %w", err)
		}
	}

	a.selection.Set(sel)
	a.logger.Info().
		Str("shape", string(sel.Shape)).
		Str("color", sel.Color).
		Int("count", sel.Count).
		Msg("selection changed")
	return nil
}

// SetSignal publishes an externally reported hand state. It is only
// accepted when the app runs with a remote signal source.
func (a *App) SetSignal(sig Signal) error {
	if !a.config.Remote {
		return ErrLocalSignal
	}
	if math.IsNaN(sig.Tension) || sig.Tension < 0 || sig.Tension > 1 {
		return fmt.Errorf("%w: tension %v outside [0,1]", ErrInvalidSignal, sig.Tension)
	}
	if sig.Gesture != "" && !sig.Gesture.Valid() {
		return fmt.Errorf("%w: unknown gesture %q", ErrInvalidSignal, sig.Gesture)
	}

	a.cell.Store(gesture.FromSignal(sig.Tension, sig.Detected, sig.Gesture))
	return nil
}

// StartTracking starts the local hand tracker on the configured source.
func (a *App) StartTracking() error {
	if a.config.Remote {
		return tracker.ErrRemoteSignal
	}
	if a.config.Tracker == nil {
		return ErrNoTracker
	}
	return a.config.Tracker.Start(a.config.Source)
}

// StopTracking stops the local hand tracker. It is safe to call repeatedly.
func (a *App) StopTracking() {
	if a.config.Tracker != nil {
		a.config.Tracker.Stop()
	}
}

// Tracking reports whether the local tracker is running.
func (a *App) Tracking() bool {
	return a.config.Tracker != nil && a.config.Tracker.Running()
}

// Preview returns the latest camera frame as JPEG, or nil.
func (a *App) Preview() []byte {
	if a.config.Tracker == nil {
		return nil
	}
	return a.config.Tracker.Preview()
}

// Events returns up to limit recent gesture commits, newest first.
func (a *App) Events(limit int) ([]*store.Event, error) {
	if a.config.Store == nil {
		return nil, nil
	}
	return a.config.Store.Events().Recent(limit)
}

// Hooks returns the discovered hooks.
func (a *App) Hooks() []*hook.Hook {
	if a.config.HookRegistry == nil {
		return nil
	}
	return a.config.HookRegistry.List()
}

// Event returns one journaled gesture commit with the hooks it ran.
func (a *App) Event(id string) (*store.Event, []*store.HookRun, error) {
	if a.config.Store == nil {
		return nil, nil, store.ErrNotFound
	}

	e, err := a.config.Store.Events().Get(id)
	if err != nil {
		return nil, nil, err
	}
	runs, err := a.config.Store.Events().HookRuns(id)
	if err != nil {
		return nil, nil, err
	}
	return e, runs, nil
}
