package gesture

import "time"

// Deferred is a single-slot cancellable task. Arming replaces whatever was
// pending, so at most one task is ever live. It is driven by Fire from the
// owner's own loop rather than by a runtime timer, which keeps the task on
// the owner's goroutine.
type Deferred struct {
	due   time.Time
	fn    func()
	armed bool
}

// Arm schedules fn to run once delay has elapsed after now.
func (d *Deferred) Arm(now time.Time, delay time.Duration, fn func()) {
	d.due = now.Add(delay)
	d.fn = fn
	d.armed = true
}

// Cancel drops the pending task, if any.
func (d *Deferred) Cancel() {
	d.fn = nil
	d.armed = false
}

// Pending reports whether a task is armed.
func (d *Deferred) Pending() bool {
	return d.armed
}

// Due returns when the pending task fires. Zero when nothing is armed.
func (d *Deferred) Due() time.Time {
	if !d.armed {
		return time.Time{}
	}
	return d.due
}

// Fire runs the pending task if it is due at now and reports whether it ran.
// The slot is cleared before the task runs, so the task may re-arm it.
func (d *Deferred) Fire(now time.Time) bool {
	if !d.armed || now.Before(d.due) {
		return false
	}
	fn := d.fn
	d.Cancel()
	if fn != nil {
		fn()
	}
	return true
}
