package merge

import (
	"context"
	"fmt"
	"sync"

	"github.com/branchguard/branchguard/internal/git"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// conflictFilter selects unmerged paths.
const conflictFilter = "U"

// Coordinator drives merges and conflict resolution. Whether a merge is
// open always comes from the collaborator; the coordinator only remembers
// how the last merge it saw ended.
type Coordinator struct {
	merger Merger

	mu     sync.Mutex
	last   Phase
	branch string

	logger *zap.Logger
}

func NewCoordinator(merger Merger, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		merger: merger,
		last:   PhaseIdle,

		logger: logger,
	}
}

func (c *Coordinator) State(ctx context.Context) (State, error) {
	open, err := c.merger.HasMergeMarker(ctx)
	if err != nil {
		c.logger.Error("failed to query merge marker", zap.Error(err))
		return State{}, fmt.Errorf("%w: %w", ErrStateUnavailable, err)
	}

	last, branch := c.remembered()

	if open {
		files, conflictsErr := c.Conflicts(ctx)
		if conflictsErr != nil {
			return State{}, conflictsErr
		}
		return State{Phase: PhaseConflicted, Branch: branch, InProgress: true, OpenFiles: files}, nil
	}

	if last == PhaseConflicted {
		// Concluded or abandoned outside this process.
		last = PhaseIdle
	}

	return State{Phase: last, Branch: branch, OpenFiles: []string{}}, nil
}

// Merge merges branch into the current branch. Conflicts are a normal
// outcome, not an error.
func (c *Coordinator) Merge(ctx context.Context, branch string) (Outcome, error) {
	logger := c.logger.With(zap.String("branch", branch))

	open, err := c.merger.HasMergeMarker(ctx)
	if err != nil {
		logger.Error("failed to query merge marker", zap.Error(err))
		return Outcome{}, fmt.Errorf("%w: %w", ErrStateUnavailable, err)
	}
	if open {
		logger.Warn("merge refused, another merge is open")
		return Outcome{}, fmt.Errorf("%w: conclude or abort it before merging %s", ErrMergeInProgress, branch)
	}

	logger.Info("merging branch")
	mergeErr := c.merger.Merge(ctx, branch)

	// Unmerged paths only mean this merge stopped on conflicts when it left
	// a merge open; otherwise they predate the attempt and git refused it.
	open, err = c.merger.HasMergeMarker(ctx)
	if err != nil {
		logger.Error("failed to query merge marker", zap.Error(err))
		return Outcome{}, fmt.Errorf("%w: %w", ErrStateUnavailable, err)
	}

	if open {
		conflicts, conflictsErr := c.Conflicts(ctx)
		if conflictsErr != nil {
			return Outcome{}, conflictsErr
		}

		if len(conflicts) > 0 {
			logger.Info("merge stopped on conflicts", zap.Strings("files", conflicts))
			c.remember(PhaseConflicted, branch)
			return Outcome{Phase: PhaseConflicted, Branch: branch, Conflicts: conflicts}, nil
		}
	}

	if mergeErr != nil {
		logger.Error("merge failed", zap.Error(mergeErr))
		return Outcome{}, fmt.Errorf("%w: %s: %w", ErrMergeFailed, branch, mergeErr)
	}

	logger.Info("merge completed")
	c.remember(PhaseCompleted, branch)
	return Outcome{Phase: PhaseCompleted, Branch: branch, Conflicts: []string{}}, nil
}

// Conflicts lists the paths still unmerged.
func (c *Coordinator) Conflicts(ctx context.Context) ([]string, error) {
	files, err := c.merger.DiffNameOnly(ctx, conflictFilter)
	if err != nil {
		c.logger.Error("failed to list conflicts", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStateUnavailable, err)
	}
	if files == nil {
		files = []string{}
	}
	return files, nil
}

// Resolve takes one side of a conflicted path and stages the result.
func (c *Coordinator) Resolve(ctx context.Context, path string, side git.Side) error {
	if !side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}

	logger := c.logger.With(zap.String("file", path), zap.String("side", string(side)))

	open, err := c.merger.HasMergeMarker(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStateUnavailable, err)
	}
	if !open {
		return ErrNoMergeInProgress
	}

	conflicts, err := c.Conflicts(ctx)
	if err != nil {
		return err
	}
	if !lo.Contains(conflicts, path) {
		return fmt.Errorf("%w: %s", ErrNotConflicted, path)
	}

	logger.Info("resolving conflict")

	if resolveErr := c.merger.CheckoutSide(ctx, path, side); resolveErr != nil {
		logger.Error("failed to resolve conflict", zap.Error(resolveErr))
		return fmt.Errorf("%w: %s: %w", ErrResolveFailed, path, resolveErr)
	}

	return nil
}

// Continue concludes the merge once every conflict is resolved.
func (c *Coordinator) Continue(ctx context.Context) error {
	conflicts, err := c.Conflicts(ctx)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		c.logger.Warn("continue refused, unresolved conflicts", zap.Strings("files", conflicts))
		return fmt.Errorf("%w: %v", ErrUnresolvedConflicts, conflicts)
	}

	open, err := c.merger.HasMergeMarker(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStateUnavailable, err)
	}
	if !open {
		return ErrNoMergeInProgress
	}

	c.logger.Info("continuing merge")

	if continueErr := c.merger.MergeContinue(ctx); continueErr != nil {
		c.logger.Error("failed to continue merge", zap.Error(continueErr))
		return fmt.Errorf("%w: %w", ErrContinueFailed, continueErr)
	}

	_, branch := c.remembered()
	c.remember(PhaseCompleted, branch)
	return nil
}

// Abort restores the pre-merge state.
func (c *Coordinator) Abort(ctx context.Context) error {
	c.logger.Info("aborting merge")

	if err := c.merger.MergeAbort(ctx); err != nil {
		c.logger.Error("failed to abort merge", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrAbortFailed, err)
	}

	_, branch := c.remembered()
	c.remember(PhaseAborted, branch)
	return nil
}

func (c *Coordinator) remember(phase Phase, branch string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last = phase
	c.branch = branch
}

func (c *Coordinator) remembered() (Phase, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last, c.branch
}
