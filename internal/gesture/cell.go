package gesture

import "sync/atomic"

// StateCell holds the most recently published HandState. One producer stores,
// any number of readers load; readers never block.
type StateCell struct {
	p atomic.Pointer[HandState]
}

// Store publishes s, replacing the previous state.
func (c *StateCell) Store(s HandState) {
	c.p.Store(&s)
}

// Load returns the latest state, or the neutral state if nothing was published.
func (c *StateCell) Load() HandState {
	if s := c.p.Load(); s != nil {
		return *s
	}
	return NeutralState()
}

// Reset publishes the neutral state.
func (c *StateCell) Reset() {
	c.Store(NeutralState())
}
