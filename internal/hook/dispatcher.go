package hook

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// QueueSize is how many gesture events may wait for their hooks.
const QueueSize = 16

// Result is the outcome of one hook run.
type Result struct {
	// Tag identifies the triggering event, e.g. its journal id.
	Tag      string
	Hook     string
	Request  Request
	Response *Response
	Err      error
	Duration time.Duration
}

// Success reports whether the hook ran and reported success.
func (r Result) Success() bool {
	return r.Err == nil && r.Response != nil && r.Response.Success
}

type job struct {
	tag string
	req Request
}

// Dispatcher runs matching hooks off the caller's goroutine, one event at a
// time and in arrival order.
type Dispatcher struct {
	registry *Registry
	executor *Executor
	logger   zerolog.Logger
	onResult func(Result)

	mu     sync.Mutex
	closed bool
	queue  chan job
	done   chan struct{}
}

// NewDispatcher starts a dispatcher. onResult, if set, is called from the
// worker goroutine after every hook run.
func NewDispatcher(registry *Registry, executor *Executor, logger zerolog.Logger, onResult func(Result)) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		executor: executor,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
		onResult: onResult,
		queue:    make(chan job, QueueSize),
		done:     make(chan struct{}),
	}
	go d.work()
	return d
}

// Dispatch queues req for every hook subscribed to req.Gesture. It never
// blocks; false means the event was dropped because the queue is full or the
// dispatcher is closed.
func (d *Dispatcher) Dispatch(tag string, req Request) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	select {
	case d.queue <- job{tag: tag, req: req}:
		return true
	default:
		d.logger.Warn().Str("gesture", req.Gesture).Msg("hook queue full, event dropped")
		return false
	}
}

// Close stops accepting events and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) work() {
	defer close(d.done)

	for j := range d.queue {
		for _, h := range d.registry.Matching(j.req.Gesture) {
			start := time.Now()
			resp, err := d.executor.Run(context.Background(), h, j.req)

			result := Result{
				Tag:      j.tag,
				Hook:     h.Manifest.Name,
				Request:  j.req,
				Response: resp,
				Err:      err,
				Duration: time.Since(start),
			}

			switch {
			case err != nil:
				d.logger.Warn().Err(err).Str("hook", h.Manifest.Name).Msg("hook failed")
			case !resp.Success:
				d.logger.Warn().Str("hook", h.Manifest.Name).Str("error", resp.Error).Msg("hook reported failure")
			default:
				d.logger.Debug().Str("hook", h.Manifest.Name).Dur("took", result.Duration).Msg("hook ran")
			}

			if d.onResult != nil {
				d.onResult(result)
			}
		}
	}
}
