package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/shape"
	"github.com/ayusman/mudra/internal/store"
)

const (
	journalQueue = 64
	// journalKeep is how many gesture events survive pruning.
	journalKeep = 1000
	pruneEvery  = 100
)

type commit struct {
	gesture  gesture.Type
	previous gesture.Type
	shape    shape.Kind
	color    string
	tension  float64
}

// journal records gesture commits and fires hooks for special gestures off
// the simulation goroutine.
type journal struct {
	store      *store.Store
	dispatcher *hook.Dispatcher
	logger     zerolog.Logger

	mu       sync.Mutex
	closed   bool
	queue    chan commit
	done     chan struct{}
	recorded int
}

func newJournal(st *store.Store, registry *hook.Registry, executor *hook.Executor, logger zerolog.Logger) *journal {
	j := &journal{
		store:  st,
		logger: logger,
		queue:  make(chan commit, journalQueue),
		done:   make(chan struct{}),
	}

	if registry != nil {
		if executor == nil {
			executor = hook.NewExecutor(hook.DefaultTimeout)
		}
		j.dispatcher = hook.NewDispatcher(registry, executor, logger, j.recordHookRun)
	}

	go j.work()
	return j
}

func (j *journal) submit(c commit) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return
	}
	select {
	case j.queue <- c:
	default:
		j.logger.Warn().Str("gesture", string(c.gesture)).Msg("journal full, commit dropped")
	}
}

func (j *journal) close() {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.queue)
	}
	j.mu.Unlock()

	<-j.done
	if j.dispatcher != nil {
		j.dispatcher.Close()
	}
}

func (j *journal) work() {
	defer close(j.done)

	for c := range j.queue {
		id := j.record(c)

		if j.dispatcher == nil || !c.gesture.Special() {
			continue
		}
		j.dispatcher.Dispatch(id, hook.Request{
			Event:    "gesture",
			Gesture:  string(c.gesture),
			Previous: string(c.previous),
			Shape:    string(c.shape),
			Color:    c.color,
			Tension:  c.tension,
		})
	}
}

// record stores c and returns its event id, or "" without a store.
func (j *journal) record(c commit) string {
	if j.store == nil {
		return ""
	}

	e := &store.Event{
		Gesture:  string(c.gesture),
		Previous: string(c.previous),
		Shape:    string(c.shape),
		Color:    c.color,
		Tension:  c.tension,
	}
	if err := j.store.Events().Record(e); err != nil {
		j.logger.Error().Err(err).Msg("record gesture event")
		return ""
	}

	j.recorded++
	if j.recorded%pruneEvery == 0 {
		if n, err := j.store.Events().Prune(journalKeep); err != nil {
			j.logger.Warn().Err(err).Msg("prune gesture events")
		} else if n > 0 {
			j.logger.Debug().Int64("removed", n).Msg("pruned gesture events")
		}
	}
	return e.ID
}

func (j *journal) recordHookRun(res hook.Result) {
	if j.store == nil || res.Tag == "" {
		return
	}

	run := &store.HookRun{
		EventID:  res.Tag,
		Hook:     res.Hook,
		Success:  res.Success(),
		Duration: res.Duration,
	}
	switch {
	case res.Err != nil:
		run.Message = res.Err.Error()
	case res.Response != nil:
		run.Message = res.Response.Error
	}

	if err := j.store.Events().RecordHookRun(run); err != nil {
		j.logger.Warn().Err(err).Str("hook", res.Hook).Msg("record hook run")
	}
}
