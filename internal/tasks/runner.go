package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRetention = time.Hour

type entry struct {
	task Task
	done chan struct{}
}

// Runner executes operations in the background. Each task gets an ID that
// can be polled, and a completion channel for callers that want to wait.
type Runner struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
	closed  bool

	retention time.Duration

	ctx    context.Context //nolint:containedctx //cancelled on shutdown
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *zap.Logger
}

func NewRunner(config Config, logger *zap.Logger) *Runner {
	retention := config.Retention
	if retention <= 0 {
		retention = defaultRetention
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		entries:   map[uuid.UUID]*entry{},
		retention: retention,

		ctx:    ctx,
		cancel: cancel,

		logger: logger,
	}
}

// Submit schedules fn and returns the pending task immediately.
func (r *Runner) Submit(name string, fn func(ctx context.Context) (any, error)) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Task{}, ErrShuttingDown
	}

	r.pruneLocked(time.Now())

	e := &entry{
		task: Task{
			ID:        uuid.Must(uuid.NewV7()),
			Name:      name,
			Status:    StatusPending,
			CreatedAt: time.Now(),
		},
		done: make(chan struct{}),
	}
	r.entries[e.task.ID] = e

	r.wg.Add(1)
	go r.execute(e, fn)

	r.logger.Info("task submitted", zap.String("id", e.task.ID.String()), zap.String("name", name))

	return e.task, nil
}

// Get returns the current snapshot of a task.
func (r *Runner) Get(id uuid.UUID) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.task, nil
}

// Done returns a channel closed when the task finishes.
func (r *Runner) Done(id uuid.UUID) (<-chan struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.done, nil
}

// Wait blocks until the task finishes or ctx is done.
func (r *Runner) Wait(ctx context.Context, id uuid.UUID) (Task, error) {
	done, err := r.Done(id)
	if err != nil {
		return Task{}, err
	}

	select {
	case <-done:
		return r.Get(id)
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Shutdown stops accepting tasks and waits for running ones to finish.
// Tasks are cancelled only once ctx expires.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		r.logger.Warn("tasks still running at shutdown deadline, cancelling")
		return fmt.Errorf("failed to wait for tasks: %w", ctx.Err())
	}
}

func (r *Runner) execute(e *entry, fn func(ctx context.Context) (any, error)) {
	defer r.wg.Done()
	defer close(e.done)

	logger := r.logger.With(zap.String("id", e.task.ID.String()), zap.String("name", e.task.Name))

	r.update(e, func(t *Task) {
		now := time.Now()
		t.Status = StatusRunning
		t.StartedAt = &now
	})

	result, err := r.call(fn)

	r.update(e, func(t *Task) {
		now := time.Now()
		t.FinishedAt = &now
		t.Result = result
		if err != nil {
			t.Status = StatusFailed
			t.Error = err.Error()
			return
		}
		t.Status = StatusSucceeded
	})

	if err != nil {
		logger.Error("task failed", zap.Error(err))
		return
	}
	logger.Info("task finished")
}

func (r *Runner) call(fn func(ctx context.Context) (any, error)) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()

	return fn(r.ctx)
}

func (r *Runner) update(e *entry, fn func(*Task)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn(&e.task)
}

func (r *Runner) pruneLocked(now time.Time) {
	for id, e := range r.entries {
		if e.task.FinishedAt != nil && now.Sub(*e.task.FinishedAt) > r.retention {
			delete(r.entries, id)
		}
	}
}
