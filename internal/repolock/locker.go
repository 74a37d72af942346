package repolock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	defaultTimeout = 10 * time.Second
	retryDelay     = 100 * time.Millisecond

	// exclusiveWeight takes the whole semaphore; a shared holder takes one.
	exclusiveWeight = 1 << 30
)

// Locker serialises access to one repository. Goroutines are ordered by a
// weighted semaphore, other processes by an advisory file lock. Shared
// holders within the process share a single file read lock. Both waits are
// bounded by the configured timeout and by the caller's context.
type Locker struct {
	sem  *semaphore.Weighted
	file *flock.Flock

	readersMu sync.Mutex
	readers   int

	timeout time.Duration

	logger *zap.Logger
}

func New(config Config, logger *zap.Logger) *Locker {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Locker{
		sem:     semaphore.NewWeighted(exclusiveWeight),
		file:    flock.New(config.Path),
		timeout: timeout,
		logger:  logger,
	}
}

// Lock takes the exclusive lock used by mutating operations. The returned
// function releases it.
func (l *Locker) Lock(ctx context.Context) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.sem.Acquire(lockCtx, exclusiveWeight); err != nil {
		return nil, l.timedOut(err)
	}

	if err := l.acquire(lockCtx, l.file.TryLockContext); err != nil {
		l.sem.Release(exclusiveWeight)
		return nil, err
	}

	return func() {
		l.release()
		l.sem.Release(exclusiveWeight)
	}, nil
}

// RLock takes the shared lock used by read-only operations.
func (l *Locker) RLock(ctx context.Context) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.sem.Acquire(lockCtx, 1); err != nil {
		return nil, l.timedOut(err)
	}

	l.readersMu.Lock()
	defer l.readersMu.Unlock()

	if l.readers == 0 {
		if err := l.acquire(lockCtx, l.file.TryRLockContext); err != nil {
			l.sem.Release(1)
			return nil, err
		}
	}
	l.readers++

	return func() {
		l.readersMu.Lock()
		l.readers--
		if l.readers == 0 {
			l.release()
		}
		l.readersMu.Unlock()

		l.sem.Release(1)
	}, nil
}

func (l *Locker) acquire(ctx context.Context, try func(context.Context, time.Duration) (bool, error)) error {
	if err := os.MkdirAll(filepath.Dir(l.file.Path()), 0o755); err != nil { //nolint:mnd //dir perms
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	locked, err := try(ctx, retryDelay)
	if err != nil {
		l.logger.Warn("failed to acquire repository lock", zap.String("path", l.file.Path()), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrLockTimeout, err)
	}
	if !locked {
		return ErrLockTimeout
	}

	return nil
}

func (l *Locker) timedOut(err error) error {
	l.logger.Warn("repository lock busy in this process", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrLockTimeout, err)
}

func (l *Locker) release() {
	if err := l.file.Unlock(); err != nil {
		l.logger.Error("failed to release repository lock", zap.String("path", l.file.Path()), zap.Error(err))
	}
}
