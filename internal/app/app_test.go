package app

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/morph"
	"github.com/ayusman/mudra/internal/shape"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tracker"
)

type fakeTracker struct {
	mu      sync.Mutex
	running bool
	source  string
	starts  int
	stops   int
	err     error
}

func (f *fakeTracker) Start(source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.starts++
	f.source = source
	f.running = true
	return nil
}

func (f *fakeTracker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.running = false
}

func (f *fakeTracker) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeTracker) Preview() []byte {
	return []byte{0xFF, 0xD8}
}

func defaultSelection() Selection {
	return Selection{Shape: shape.Sphere, Color: "#00FFFF", Count: 200, Text: "HI"}
}

func newTestApp(t *testing.T, mutate func(*Config)) *App {
	t.Helper()

	cfg := Config{
		Selection: defaultSelection(),
		FPS:       60,
		Morph:     morph.DefaultTunables(),
		Seed:      7,
		Logger:    zerolog.Nop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "mudra.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// hold ticks the app every 50ms from start until start+d, returning the time
// of the last tick.
func hold(a *App, start time.Time, d time.Duration) time.Time {
	now := start
	for now.Sub(start) < d {
		now = now.Add(50 * time.Millisecond)
		a.Tick(now, 0.05)
	}
	return now
}

func TestNew_RejectsInvalidSelection(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
	}{
		{name: "unknown shape", sel: Selection{Shape: "cube", Color: "#FFFFFF", Count: 10}},
		{name: "bad color", sel: Selection{Shape: shape.Sphere, Color: "blue", Count: 10}},
		{name: "no particles", sel: Selection{Shape: shape.Sphere, Color: "#FFFFFF", Count: 0}},
		{name: "too many particles", sel: Selection{Shape: shape.Sphere, Color: "#FFFFFF", Count: MaxParticles + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{Selection: tt.sel, Logger: zerolog.Nop()})
			assert.ErrorIs(t, err, ErrInvalidSelection)
		})
	}
}

func TestApp_TickProducesFrames(t *testing.T) {
	a := newTestApp(t, nil)

	frame := a.Tick(time.Now(), 1.0/60)
	assert.Len(t, frame.Positions, 200)
	assert.Equal(t, "#00FFFF", frame.Display.Color)
	assert.Greater(t, frame.Display.PointSize, 0.0)

	snap := a.Snapshot()
	assert.Equal(t, uint64(1), snap.Ticks)
	assert.Equal(t, 200, snap.Particles)
	assert.Equal(t, gesture.None, snap.Gesture)
	assert.False(t, snap.Tracking)
}

func TestApp_SelectionChangeRegeneratesCloud(t *testing.T) {
	a := newTestApp(t, nil)
	now := time.Now()
	a.Tick(now, 1.0/60)

	sel := defaultSelection()
	sel.Count = 50
	sel.Shape = shape.Heart
	sel.Color = "#FF0000"
	require.NoError(t, a.SetSelection(sel))

	frame := a.Tick(now.Add(time.Second/60), 1.0/60)
	assert.Len(t, frame.Positions, 50)
	assert.Equal(t, "#FF0000", frame.Display.Color)
	assert.Equal(t, shape.Heart, a.engine.Kind())
}

func TestApp_SetSelectionValidates(t *testing.T) {
	a := newTestApp(t, nil)

	sel := defaultSelection()
	sel.Text = string(make([]rune, MaxTextLength+1))
	assert.ErrorIs(t, a.SetSelection(sel), ErrInvalidSelection)
	assert.Equal(t, defaultSelection(), a.Selection())
}

func TestApp_SelectionIsPersisted(t *testing.T) {
	st := newTestStore(t)

	a := newTestApp(t, func(c *Config) { c.Store = st })
	want := Selection{Shape: shape.Galaxy, Color: "#123456", Count: 321, Text: "नमस्ते"}
	require.NoError(t, a.SetSelection(want))

	b := newTestApp(t, func(c *Config) { c.Store = st })
	assert.Equal(t, want, b.Selection())
}

func TestApp_InvalidPersistedSelectionIsIgnored(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Settings().Set(settingColor, "nope"))

	a := newTestApp(t, func(c *Config) { c.Store = st })
	assert.Equal(t, defaultSelection(), a.Selection())
}

func TestApp_SpecialGestureDebounce(t *testing.T) {
	cell := &gesture.StateCell{}
	a := newTestApp(t, func(c *Config) { c.Cell = cell })

	start := time.Now()
	a.Tick(start, 0.05)

	// Held for less than the confirm delay, then released.
	cell.Store(gesture.HandState{Tension: 0.5, Detected: true, Gesture: gesture.Victory})
	now := hold(a, start, 200*time.Millisecond)
	cell.Store(gesture.HandState{Tension: 0.5, Detected: true, Gesture: gesture.None})
	now = hold(a, now, 500*time.Millisecond)
	assert.Equal(t, gesture.None, a.Snapshot().Gesture)
	assert.Equal(t, shape.Sphere, a.Selection().Shape)

	// Held past the confirm delay.
	cell.Store(gesture.HandState{Tension: 0.5, Detected: true, Gesture: gesture.Love})
	now = hold(a, now, 400*time.Millisecond)
	snap := a.Snapshot()
	assert.Equal(t, gesture.Love, snap.Gesture)
	assert.Equal(t, shape.Heart, snap.Selection.Shape)
	assert.Equal(t, "#FF69B4", snap.Selection.Color)
	assert.Equal(t, shape.Heart, a.engine.Kind())

	// Released for less than the release delay keeps the look.
	cell.Store(gesture.HandState{Tension: 0.5, Detected: true, Gesture: gesture.None})
	now = hold(a, now, 600*time.Millisecond)
	assert.Equal(t, shape.Heart, a.Selection().Shape)

	// Past the release delay the previous look returns.
	hold(a, now, 600*time.Millisecond)
	snap = a.Snapshot()
	assert.Equal(t, gesture.None, snap.Gesture)
	assert.Equal(t, defaultSelection(), snap.Selection)
}

func TestApp_CommitsAreJournaled(t *testing.T) {
	st := newTestStore(t)
	cell := &gesture.StateCell{}
	a, err := New(Config{
		Selection: defaultSelection(),
		Morph:     morph.DefaultTunables(),
		Seed:      1,
		Cell:      cell,
		Store:     st,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)

	start := time.Now()
	cell.Store(gesture.HandState{Tension: 0.4, Detected: true, Gesture: gesture.ThumbsUp})
	hold(a, start, 400*time.Millisecond)
	a.Close()

	events, err := st.Events().Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "thumbs_up", events[0].Gesture)
	assert.Equal(t, "none", events[0].Previous)
	assert.Equal(t, "fireworks", events[0].Shape)
	assert.Equal(t, "#FF3B30", events[0].Color)
	assert.InDelta(t, 0.4, events[0].Tension, 1e-12)
}

func TestApp_CommitsRunHooks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts need a POSIX shell")
	}

	hooksDir := t.TempDir()
	hookDir := filepath.Join(hooksDir, "echo")
	require.NoError(t, os.MkdirAll(hookDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(hookDir, hook.ManifestFile),
		[]byte(`{"name":"echo","executable":"run.sh","gestures":["point"]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(hookDir, "run.sh"),
		[]byte("#!/bin/sh\ncat >/dev/null\necho '{\"success\":true}'\n"), 0o755))

	registry := hook.NewRegistry(hooksDir, zerolog.Nop())
	require.NoError(t, registry.Discover())

	st := newTestStore(t)
	cell := &gesture.StateCell{}
	a, err := New(Config{
		Selection:    defaultSelection(),
		Morph:        morph.DefaultTunables(),
		Seed:         1,
		Cell:         cell,
		Store:        st,
		HookRegistry: registry,
		HookExecutor: hook.NewExecutor(5 * time.Second),
		Logger:       zerolog.Nop(),
	})
	require.NoError(t, err)
	assert.Len(t, a.Hooks(), 1)

	start := time.Now()
	cell.Store(gesture.HandState{Tension: 0.2, Detected: true, Gesture: gesture.Point})
	now := hold(a, start, 400*time.Millisecond)
	// Base gestures are journaled but do not run hooks.
	cell.Store(gesture.HandState{Tension: 0.9, Detected: true, Gesture: gesture.Fist})
	hold(a, now, 1200*time.Millisecond)
	a.Close()

	events, err := a.Events(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "none", events[0].Gesture, "release commits none")
	assert.Equal(t, "point", events[1].Gesture)

	runs, err := st.Events().HookRuns(events[1].ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "echo", runs[0].Hook)
	assert.True(t, runs[0].Success)

	runs, err = st.Events().HookRuns(events[0].ID)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestApp_SetSignal(t *testing.T) {
	local := newTestApp(t, nil)
	assert.ErrorIs(t, local.SetSignal(Signal{Tension: 0.5, Detected: true}), ErrLocalSignal)

	cell := &gesture.StateCell{}
	remote := newTestApp(t, func(c *Config) {
		c.Remote = true
		c.Cell = cell
	})

	assert.ErrorIs(t, remote.SetSignal(Signal{Tension: 1.5, Detected: true}), ErrInvalidSignal)
	assert.ErrorIs(t, remote.SetSignal(Signal{Tension: 0.5, Detected: true, Gesture: "wave"}), ErrInvalidSignal)

	require.NoError(t, remote.SetSignal(Signal{Tension: 0.9, Detected: true}))
	assert.Equal(t, gesture.HandState{Tension: 0.9, Detected: true, Gesture: gesture.Fist}, cell.Load())

	require.NoError(t, remote.SetSignal(Signal{Detected: false}))
	assert.Equal(t, gesture.NeutralState(), cell.Load())

	remote.Tick(time.Now(), 1.0/60)
	assert.True(t, remote.Snapshot().Remote)
}

func TestApp_Tracking(t *testing.T) {
	none := newTestApp(t, nil)
	assert.ErrorIs(t, none.StartTracking(), ErrNoTracker)
	none.StopTracking()
	assert.Nil(t, none.Preview())

	remote := newTestApp(t, func(c *Config) {
		c.Remote = true
		c.Tracker = &fakeTracker{}
	})
	assert.ErrorIs(t, remote.StartTracking(), tracker.ErrRemoteSignal)

	ft := &fakeTracker{}
	a := newTestApp(t, func(c *Config) {
		c.Tracker = ft
		c.Source = "1"
	})

	require.NoError(t, a.StartTracking())
	assert.True(t, a.Tracking())
	assert.True(t, a.Snapshot().Tracking)
	assert.Equal(t, "1", ft.source)
	assert.Equal(t, []byte{0xFF, 0xD8}, a.Preview())

	a.StopTracking()
	a.StopTracking()
	assert.False(t, a.Tracking())
	assert.Equal(t, 2, ft.stops)
}

func TestApp_RunFansOutFrames(t *testing.T) {
	a := newTestApp(t, func(c *Config) { c.FPS = 100 })

	frames, cancel := a.Subscribe()
	assert.Equal(t, 1, a.Subscribers())

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case f := <-frames:
		assert.Len(t, f.Positions, 200)
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
	}

	stop()
	require.NoError(t, <-done)

	cancel()
	cancel()
	assert.Equal(t, 0, a.Subscribers())
	for range frames {
		// drained; the channel is closed by cancel
	}
}

func TestApp_SlowSubscriberDropsFrames(t *testing.T) {
	a := newTestApp(t, nil)
	frames, cancel := a.Subscribe()
	defer cancel()

	for range 5 {
		a.broadcast(morph.Frame{})
	}
	assert.Len(t, frames, SubscriberBuffer)
}
