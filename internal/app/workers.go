package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// WorkerFunc is a long-lived background loop. It must return once ctx is done.
type WorkerFunc func(ctx context.Context) error

type worker struct {
	name string
	fn   WorkerFunc
}

// Workers starts the background loops once and joins them on Stop.
type Workers struct {
	parent context.Context
	log    zerolog.Logger

	mu      sync.Mutex
	workers []worker
	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// NewWorkers creates a Workers bound to parent; cancelling parent stops every loop.
func NewWorkers(parent context.Context, log zerolog.Logger) *Workers {
	return &Workers{parent: parent, log: log}
}

// Add registers a loop. Loops added after Start are ignored.
func (w *Workers) Add(name string, fn WorkerFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		w.log.Warn().Str("worker", name).Msg("worker added after start, ignoring")
		return
	}
	w.workers = append(w.workers, worker{name: name, fn: fn})
}

// Start launches every registered loop. Calling it again is a no-op.
func (w *Workers) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	ctx, cancel := context.WithCancel(w.parent)
	w.cancel = cancel
	w.group = &errgroup.Group{}

	for _, wk := range w.workers {
		w.log.Info().Str("worker", wk.name).Msg("starting worker")
		w.group.Go(func() error {
			err := wk.fn(ctx)
			if err != nil {
				w.log.Error().Err(err).Str("worker", wk.name).Msg("worker exited")
			} else {
				w.log.Debug().Str("worker", wk.name).Msg("worker stopped")
			}
			return err
		})
	}
}

// Started reports whether Start has run.
func (w *Workers) Started() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

// Stop cancels every loop and waits for them, returning the first error.
// It is safe to call without Start and more than once.
func (w *Workers) Stop() error {
	w.mu.Lock()
	cancel, group := w.cancel, w.group
	w.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	return group.Wait()
}
