package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/branchguard/branchguard/internal/git"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher follows the repository's git directory and re-probes branch and
// merge state after each burst of changes. Operations performed outside
// this process (a terminal, an IDE) show up in logs and metrics this way.
type Watcher struct {
	probe    Probe
	debounce time.Duration

	metrics *metrics
	logger  *zap.Logger

	mu    sync.Mutex
	fs    *fsnotify.Watcher
	timer *time.Timer
	state State
	known bool

	ctx    context.Context //nolint:containedctx //cancelled on stop
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(config Config, probe Probe, metrics *metrics, logger *zap.Logger) *Watcher {
	debounce := config.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &Watcher{
		probe:    probe,
		debounce: debounce,

		metrics: metrics,
		logger:  logger,
	}
}

func (w *Watcher) Start(ctx context.Context) error {
	dir, err := w.probe.GitDir(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve git dir: %w", err)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	for _, path := range watchPaths(dir) {
		if addErr := fs.Add(path); addErr != nil {
			return errors.Join(fmt.Errorf("failed to watch %s: %w", path, addErr), fs.Close())
		}
		w.logger.Debug("watching", zap.String("path", path))
	}

	w.mu.Lock()
	w.fs = fs
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.mu.Unlock()

	if _, refreshErr := w.Refresh(ctx); refreshErr != nil {
		w.logger.Warn("initial repository probe failed", zap.Error(refreshErr))
	}

	w.wg.Add(1)
	go w.loop(fs)

	w.logger.Info("repository watcher started", zap.String("git_dir", dir))
	return nil
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	fs := w.fs
	w.fs = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	if fs == nil {
		return nil
	}

	err := fs.Close()
	w.wg.Wait()

	w.logger.Info("repository watcher stopped")
	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// State returns the last observed state; ok is false before the first probe.
func (w *Watcher) State() (State, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state, w.known
}

// Refresh probes the repository now and records the result.
func (w *Watcher) Refresh(ctx context.Context) (State, error) {
	var next State

	branch, err := w.probe.CurrentBranch(ctx)
	switch {
	case errors.Is(err, git.ErrDetachedHead):
		next.Detached = true
	case err != nil:
		return State{}, fmt.Errorf("failed to get current branch: %w", err)
	default:
		next.Branch = branch
	}

	next.MergeInProgress, err = w.probe.HasMergeMarker(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to check merge marker: %w", err)
	}

	w.mu.Lock()
	prev, known := w.state, w.known
	w.state, w.known = next, true
	w.mu.Unlock()

	if next.MergeInProgress {
		w.metrics.mergeInProgress.Set(1)
	} else {
		w.metrics.mergeInProgress.Set(0)
	}

	if known && prev != next {
		w.metrics.changes.Inc()
		w.logger.Info(
			"repository state changed",
			zap.String("from_branch", prev.Branch),
			zap.String("to_branch", next.Branch),
			zap.Bool("detached", next.Detached),
			zap.Bool("merge_in_progress", next.MergeInProgress),
		)
	}

	return next, nil
}

func (w *Watcher) loop(fs *fsnotify.Watcher) {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ignored(ev.Name) {
				continue
			}
			w.schedule()
		case err, ok := <-fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fs == nil {
		return
	}

	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()

	if ctx == nil || ctx.Err() != nil {
		return
	}

	if _, err := w.Refresh(ctx); err != nil {
		w.logger.Warn("repository probe failed", zap.Error(err))
	}
}

// watchPaths lists the git dir itself (HEAD, MERGE_HEAD, index) plus the
// local branch refs when present.
func watchPaths(gitDir string) []string {
	paths := []string{gitDir}

	heads := filepath.Join(gitDir, "refs", "heads")
	if info, err := os.Stat(heads); err == nil && info.IsDir() {
		paths = append(paths, heads)
	}

	return paths
}

func ignored(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".lock")
}
