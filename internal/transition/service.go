package transition

import (
	"context"
	"errors"
	"fmt"

	"github.com/branchguard/branchguard/internal/divergence"
	"github.com/branchguard/branchguard/internal/git"
	"github.com/branchguard/branchguard/internal/stash"
	"go.uber.org/zap"
)

// Coordinator moves the working tree between branches without losing
// local modifications unless explicitly told to.
type Coordinator struct {
	branches Branches
	changes  ChangeSource
	stasher  Stasher
	analyzer DivergenceDetector

	logger *zap.Logger
}

func NewCoordinator(
	branches Branches,
	changes ChangeSource,
	stasher Stasher,
	analyzer DivergenceDetector,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		branches: branches,
		changes:  changes,
		stasher:  stasher,
		analyzer: analyzer,

		logger: logger,
	}
}

// AutoStashMessage is the shelf message used when switching with AutoStash.
func AutoStashMessage(origin, target string) string {
	return fmt.Sprintf("auto-stash: switching from %s to %s", origin, target)
}

// SafeSwitch checks out target. With pending changes it stashes them when
// AutoStash is set, discards them when Force is set, and otherwise refuses
// with KindPendingChanges. A ChangeSet that could not be fully read counts
// as pending.
func (c *Coordinator) SafeSwitch(ctx context.Context, target string, opts Options) (Result, error) {
	origin, err := c.branches.CurrentBranch(ctx)
	originRef := origin
	var detached *git.DetachedHeadError
	if errors.As(err, &detached) {
		// A detached HEAD is never the target; it is named by its commit.
		origin, originRef, err = detached.Short(), detached.Hash, nil
		c.logger.Info("switching from a detached HEAD", zap.String("commit", detached.Hash))
	}
	if err != nil {
		c.logger.Error("failed to determine current branch", zap.Error(err))
		return Result{}, &SwitchError{
			Kind:   KindUnknown,
			Reason: err.Error(),
			Target: target,
			Err:    err,
		}
	}

	logger := c.logger.With(zap.String("origin", origin), zap.String("target", target))

	if origin == target {
		logger.Info("already on target branch")
		return Result{
			Success: true,
			Message: fmt.Sprintf("already on %s", target),
			Origin:  origin,
			Target:  target,
		}, nil
	}

	set := c.changes.Compute(ctx)
	pending := set.HasChanges() || set.Degraded()
	if set.Degraded() {
		logger.Warn("change inspection degraded, treating working tree as dirty")
	}

	force := false
	stashed := false

	if pending {
		switch {
		case opts.AutoStash:
			outcome, stashErr := c.stasher.Create(ctx, AutoStashMessage(origin, target))
			if stashErr != nil {
				logger.Error("auto-stash failed, branch unchanged", zap.Error(stashErr))
				return Result{}, &SwitchError{
					Kind:              KindStashFailed,
					Reason:            stashErr.Error(),
					Origin:            origin,
					Target:            target,
					HadPendingChanges: true,
					Pending:           set.All(),
					Err:               stashErr,
				}
			}
			stashed = outcome == stash.OutcomeCreated
		case opts.Force:
			logger.Warn("forcing switch, local changes will be discarded", zap.Strings("files", set.All()))
			force = true
		default:
			logger.Info("switch refused, pending changes", zap.Int("files", len(set.All())))
			return Result{}, &SwitchError{
				Kind:              KindPendingChanges,
				Reason:            fmt.Sprintf("%d file(s) with uncommitted changes", len(set.All())),
				Origin:            origin,
				Target:            target,
				HadPendingChanges: true,
				Pending:           set.All(),
			}
		}
	}

	logger.Info("switching branch", zap.Bool("force", force), zap.Bool("stashed", stashed))

	if checkoutErr := c.branches.Checkout(ctx, target, force); checkoutErr != nil {
		kind := Classify(checkoutErr.Error())
		logger.Error("checkout failed", zap.String("kind", string(kind)), zap.Error(checkoutErr))
		return Result{}, &SwitchError{
			Kind:              kind,
			Reason:            checkoutErr.Error(),
			Origin:            origin,
			Target:            target,
			HadPendingChanges: pending,
			Pending:           set.All(),
			Stashed:           stashed,
			Err:               checkoutErr,
		}
	}

	now, err := c.branches.CurrentBranch(ctx)
	if err != nil || now != target {
		reason := fmt.Sprintf("checkout completed but current branch is %q", now)
		if err != nil {
			reason = err.Error()
		}
		logger.Error("switch not confirmed", zap.String("current", now), zap.Error(err))
		return Result{}, &SwitchError{
			Kind:              KindUnknown,
			Reason:            reason,
			Origin:            origin,
			Target:            target,
			HadPendingChanges: pending,
			Stashed:           stashed,
			Err:               err,
		}
	}

	result := Result{
		Success:           true,
		Message:           switchMessage(origin, target, stashed, force),
		Origin:            origin,
		Target:            target,
		Stashed:           stashed,
		HadPendingChanges: pending,
	}

	if opts.Analyze {
		result.Divergence = c.analyze(ctx, logger, originRef, target, opts.Window)
	}

	logger.Info("branch switched")
	return result, nil
}

// analyze is best effort; a failure leaves the switch successful.
func (c *Coordinator) analyze(ctx context.Context, logger *zap.Logger, origin, target string, window int) *divergence.Report {
	report, err := c.analyzer.Detect(ctx, origin, target, window)
	if err != nil {
		logger.Warn("post-switch divergence analysis failed", zap.Error(err))
		return nil
	}
	return &report
}

func switchMessage(origin, target string, stashed, forced bool) string {
	switch {
	case stashed:
		return fmt.Sprintf("switched from %s to %s, local changes stashed", origin, target)
	case forced:
		return fmt.Sprintf("switched from %s to %s, local changes discarded", origin, target)
	default:
		return fmt.Sprintf("switched from %s to %s", origin, target)
	}
}
