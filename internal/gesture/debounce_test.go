package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/shape"
)

type fakeSelector struct {
	look    Look
	applied []Look
}

func (s *fakeSelector) Look() Look { return s.look }

func (s *fakeSelector) ApplyLook(l Look) {
	s.look = l
	s.applied = append(s.applied, l)
}

var baseLook = Look{Shape: shape.Galaxy, Color: "#8844FF"}

func newTestDebouncer() (*Debouncer, *fakeSelector) {
	sel := &fakeSelector{look: baseLook}
	return NewDebouncer(sel, DebounceConfig{}), sel
}

// feed holds raw for the given duration, sampling every 16ms like a render tick.
func feed(d *Debouncer, raw Type, start time.Time, hold time.Duration) time.Time {
	const step = 16 * time.Millisecond
	now := start
	end := start.Add(hold)
	for ; now.Before(end); now = now.Add(step) {
		d.Update(raw, now)
	}
	d.Update(raw, end)
	return end
}

func TestDebouncer_InitialState(t *testing.T) {
	d, _ := newTestDebouncer()
	assert.Equal(t, None, d.Current())
	assert.False(t, d.Pending())
}

func TestDebouncer_BaseGesturesApplyImmediately(t *testing.T) {
	d, sel := newTestDebouncer()
	t0 := time.Unix(1000, 0)

	assert.Equal(t, Open, d.Update(Open, t0))
	assert.Equal(t, Fist, d.Update(Fist, t0.Add(time.Millisecond)))
	assert.Equal(t, None, d.Update(None, t0.Add(2*time.Millisecond)))
	assert.Empty(t, sel.applied, "base gestures never change the look")
}

func TestDebouncer_ShortSpecialIsIgnored(t *testing.T) {
	d, sel := newTestDebouncer()
	t0 := time.Unix(1000, 0)

	now := feed(d, Victory, t0, 250*time.Millisecond)
	assert.Equal(t, None, d.Current())

	now = feed(d, None, now, 2*time.Second)
	assert.Equal(t, None, d.Current())
	assert.Equal(t, baseLook, sel.look)
	assert.Empty(t, sel.applied)
}

func TestDebouncer_ConfirmAndRelease(t *testing.T) {
	d, sel := newTestDebouncer()
	t0 := time.Unix(1000, 0)

	now := feed(d, Victory, t0, 300*time.Millisecond)
	require.Equal(t, Victory, d.Current())
	assert.Equal(t, Look{Shape: shape.Text, Color: "#FFD700"}, sel.look)

	now = feed(d, None, now, 900*time.Millisecond)
	assert.Equal(t, Victory, d.Current(), "release has not elapsed yet")
	assert.Equal(t, shape.Text, sel.look.Shape)

	feed(d, None, now, 100*time.Millisecond)
	assert.Equal(t, None, d.Current())
	assert.Equal(t, baseLook, sel.look, "saved look restored")
}

func TestDebouncer_ReturningBeforeReleaseKeepsGesture(t *testing.T) {
	d, sel := newTestDebouncer()
	t0 := time.Unix(1000, 0)

	now := feed(d, Love, t0, 400*time.Millisecond)
	require.Equal(t, Love, d.Current())

	now = feed(d, None, now, 500*time.Millisecond)
	now = feed(d, Love, now, 2*time.Second)

	assert.Equal(t, Love, d.Current())
	assert.False(t, d.Pending())
	assert.Equal(t, shape.Heart, sel.look.Shape)
}

func TestDebouncer_SpecialToSpecialKeepsOriginalSnapshot(t *testing.T) {
	d, sel := newTestDebouncer()
	t0 := time.Unix(1000, 0)

	now := feed(d, Point, t0, 350*time.Millisecond)
	require.Equal(t, Point, d.Current())
	assert.Equal(t, shape.Saturn, sel.look.Shape)

	now = feed(d, ThumbsUp, now, 350*time.Millisecond)
	require.Equal(t, ThumbsUp, d.Current())
	assert.Equal(t, Look{Shape: shape.Fireworks, Color: "#FF3B30"}, sel.look)

	feed(d, Open, now, 1100*time.Millisecond)
	assert.Equal(t, None, d.Current())
	assert.Equal(t, baseLook, sel.look)
}

func TestDebouncer_NewRawGestureCancelsPending(t *testing.T) {
	d, _ := newTestDebouncer()
	t0 := time.Unix(1000, 0)

	d.Update(Victory, t0)
	require.True(t, d.Pending())

	// Switching to another special restarts the confirm window.
	d.Update(Love, t0.Add(200*time.Millisecond))
	d.Update(Love, t0.Add(400*time.Millisecond))
	assert.Equal(t, None, d.Current())

	d.Update(Love, t0.Add(500*time.Millisecond))
	assert.Equal(t, Love, d.Current())
}

func TestDebouncer_BaseGestureCancelsConfirm(t *testing.T) {
	d, _ := newTestDebouncer()
	t0 := time.Unix(1000, 0)

	d.Update(Point, t0)
	d.Update(Fist, t0.Add(100*time.Millisecond))
	assert.Equal(t, Fist, d.Current())
	assert.False(t, d.Pending())

	d.Update(Fist, t0.Add(time.Second))
	assert.Equal(t, Fist, d.Current())
}

func TestDebouncer_OnCommit(t *testing.T) {
	d, _ := newTestDebouncer()
	t0 := time.Unix(1000, 0)

	var commits [][2]Type
	d.OnCommit(func(from, to Type) {
		commits = append(commits, [2]Type{from, to})
	})

	now := feed(d, Open, t0, 50*time.Millisecond)
	now = feed(d, Victory, now, 300*time.Millisecond)
	feed(d, None, now, time.Second)

	assert.Equal(t, [][2]Type{
		{None, Open},
		{Open, Victory},
		{Victory, None},
	}, commits)
}

func TestDeferred(t *testing.T) {
	t0 := time.Unix(1000, 0)

	t.Run("fires once when due", func(t *testing.T) {
		var d Deferred
		calls := 0
		d.Arm(t0, 100*time.Millisecond, func() { calls++ })

		assert.Equal(t, t0.Add(100*time.Millisecond), d.Due())
		assert.False(t, d.Fire(t0.Add(99*time.Millisecond)))
		assert.True(t, d.Fire(t0.Add(100*time.Millisecond)))
		assert.False(t, d.Fire(t0.Add(time.Second)))
		assert.Equal(t, 1, calls)
	})

	t.Run("cancel drops the task", func(t *testing.T) {
		var d Deferred
		d.Arm(t0, time.Millisecond, func() { t.Fatal("cancelled task ran") })
		d.Cancel()
		assert.False(t, d.Pending())
		assert.True(t, d.Due().IsZero())
		assert.False(t, d.Fire(t0.Add(time.Second)))
	})

	t.Run("re-arm replaces the task", func(t *testing.T) {
		var d Deferred
		var got string
		d.Arm(t0, time.Millisecond, func() { got = "first" })
		d.Arm(t0, 2*time.Millisecond, func() { got = "second" })
		d.Fire(t0.Add(time.Second))
		assert.Equal(t, "second", got)
	})
}
