package app

import (
	"context"
	"time"

	"github.com/ayusman/mudra/internal/morph"
)

// SubscriberBuffer is how many frames a subscriber may fall behind before
// frames are dropped for it.
const SubscriberBuffer = 2

// Run ticks the simulation at the configured FPS and fans frames out to
// subscribers until ctx is done.
func (a *App) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(a.config.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Info().Int("fps", a.config.FPS).Msg("simulation started")
	defer a.logger.Info().Msg("simulation stopped")

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now
			a.broadcast(a.Tick(now, delta))
		}
	}
}

// Subscribe returns a channel receiving every simulated frame and a function
// that cancels the subscription. A subscriber that does not keep up misses
// frames instead of stalling the simulation.
func (a *App) Subscribe() (<-chan morph.Frame, func()) {
	ch := make(chan morph.Frame, SubscriberBuffer)

	a.mu.Lock()
	a.subs[ch] = struct{}{}
	a.mu.Unlock()

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subs[ch]; ok {
			delete(a.subs, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

// Subscribers returns the number of active subscriptions.
func (a *App) Subscribers() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.subs)
}

func (a *App) broadcast(frame morph.Frame) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for ch := range a.subs {
		select {
		case ch <- frame:
		default:
		}
	}
}
