package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/branchguard/branchguard/internal/changes"
	"github.com/branchguard/branchguard/internal/divergence"
	"github.com/branchguard/branchguard/internal/git"
	"github.com/branchguard/branchguard/internal/history"
	"github.com/branchguard/branchguard/internal/merge"
	"github.com/branchguard/branchguard/internal/repolock"
	"github.com/branchguard/branchguard/internal/stash"
	"github.com/branchguard/branchguard/internal/tasks"
	"github.com/branchguard/branchguard/internal/transition"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the single entry point for callers. Mutations hold the
// repository lock exclusively and are written to the history log; reads
// share it.
type Service struct {
	config Config

	repo       Repository
	inspector  *changes.Inspector
	stashes    *stash.Manager
	analyzer   *divergence.Analyzer
	transition *transition.Coordinator
	merges     *merge.Coordinator

	locker  *repolock.Locker
	history *history.Service
	runner  *tasks.Runner
	metrics *metrics

	logger *zap.Logger
}

func NewService(
	config Config,
	repo Repository,
	inspector *changes.Inspector,
	stashes *stash.Manager,
	analyzer *divergence.Analyzer,
	transitionCoord *transition.Coordinator,
	merges *merge.Coordinator,
	locker *repolock.Locker,
	historySvc *history.Service,
	runner *tasks.Runner,
	metrics *metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		config: config,

		repo:       repo,
		inspector:  inspector,
		stashes:    stashes,
		analyzer:   analyzer,
		transition: transitionCoord,
		merges:     merges,

		locker:  locker,
		history: historySvc,
		runner:  runner,
		metrics: metrics,

		logger: logger,
	}
}

// Prepare initialises the repository when configured to.
func (s *Service) Prepare(ctx context.Context) error {
	if !s.config.InitIfMissing {
		return nil
	}

	_, err := exclusive(ctx, s, history.EntryDraft{Operation: history.OperationInit}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Init(ctx, s.config.IgnoreTemplate)
	})
	return err
}

// Changes reports pending modifications.
func (s *Service) Changes(ctx context.Context) (changes.ChangeSet, error) {
	return shared(ctx, s, func(ctx context.Context) (changes.ChangeSet, error) {
		return s.inspector.Compute(ctx), nil
	})
}

func (s *Service) CurrentBranch(ctx context.Context) (string, error) {
	return shared(ctx, s, s.repo.CurrentBranch)
}

func (s *Service) Branches(ctx context.Context, local, remote bool) ([]git.Branch, error) {
	return shared(ctx, s, func(ctx context.Context) ([]git.Branch, error) {
		return s.repo.ListBranches(ctx, local, remote)
	})
}

func (s *Service) CreateBranch(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: branch name is empty", ErrInvalidArgument)
	}

	draft := history.EntryDraft{Operation: history.OperationBranchCreate, Branch: name}
	_, err := exclusive(ctx, s, draft, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.CreateBranch(ctx, name)
	})
	return err
}

// Switch moves to target through the transition coordinator.
func (s *Service) Switch(ctx context.Context, target string, opts transition.Options) (transition.Result, error) {
	draft := history.EntryDraft{Operation: history.OperationSwitch, Target: target}

	return exclusive(ctx, s, draft, func(ctx context.Context) (transition.Result, error) {
		return s.transition.SafeSwitch(ctx, target, opts)
	}, func(d *history.EntryDraft, result transition.Result) {
		d.Origin = result.Origin
		d.Detail = result.Message
	})
}

func (s *Service) Divergence(ctx context.Context, branchA, branchB string, window int) (divergence.Report, error) {
	return shared(ctx, s, func(ctx context.Context) (divergence.Report, error) {
		return s.analyzer.Detect(ctx, branchA, branchB, window)
	})
}

func (s *Service) Feasibility(ctx context.Context, source string) (divergence.Feasibility, error) {
	return shared(ctx, s, func(ctx context.Context) (divergence.Feasibility, error) {
		return s.analyzer.Feasibility(ctx, source)
	})
}

func (s *Service) CompareFile(ctx context.Context, path, branchA, branchB string) (divergence.FileComparison, error) {
	return shared(ctx, s, func(ctx context.Context) (divergence.FileComparison, error) {
		return s.analyzer.CompareFile(ctx, path, branchA, branchB)
	})
}

func (s *Service) Stashes(ctx context.Context) ([]stash.Entry, error) {
	return shared(ctx, s, s.stashes.List)
}

func (s *Service) CreateStash(ctx context.Context, message string) (stash.Outcome, error) {
	draft := history.EntryDraft{Operation: history.OperationStashCreate, Detail: message}

	return exclusive(ctx, s, draft, func(ctx context.Context) (stash.Outcome, error) {
		return s.stashes.Create(ctx, message)
	}, func(d *history.EntryDraft, outcome stash.Outcome) {
		if outcome == stash.OutcomeSkipped {
			d.Outcome = history.OutcomeSkipped
		}
	})
}

// ApplyStash restores a stash; remove pops it.
func (s *Service) ApplyStash(ctx context.Context, index int, remove bool) error {
	draft := history.EntryDraft{Operation: history.OperationStashApply, StashIndex: &index}
	if remove {
		draft.Detail = "pop"
	}

	_, err := exclusive(ctx, s, draft, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.stashes.Apply(ctx, index, remove)
	})
	return err
}

func (s *Service) DropStash(ctx context.Context, index int) error {
	draft := history.EntryDraft{Operation: history.OperationStashDrop, StashIndex: &index}

	_, err := exclusive(ctx, s, draft, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.stashes.Drop(ctx, index)
	})
	return err
}

func (s *Service) MergeState(ctx context.Context) (merge.State, error) {
	return shared(ctx, s, s.merges.State)
}

func (s *Service) Conflicts(ctx context.Context) ([]string, error) {
	return shared(ctx, s, s.merges.Conflicts)
}

func (s *Service) Merge(ctx context.Context, branch string) (merge.Outcome, error) {
	draft := history.EntryDraft{Operation: history.OperationMerge, Branch: branch}

	return exclusive(ctx, s, draft, func(ctx context.Context) (merge.Outcome, error) {
		return s.merges.Merge(ctx, branch)
	}, func(d *history.EntryDraft, outcome merge.Outcome) {
		if outcome.Phase == merge.PhaseConflicted {
			d.Outcome = history.OutcomeConflicted
			d.Detail = strings.Join(outcome.Conflicts, ", ")
		}
	})
}

// MergeAsync runs Merge in the background.
func (s *Service) MergeAsync(branch string) (tasks.Task, error) {
	return s.runner.Submit("merge "+branch, func(ctx context.Context) (any, error) {
		return s.Merge(ctx, branch)
	})
}

func (s *Service) Resolve(ctx context.Context, path string, side git.Side) error {
	draft := history.EntryDraft{Operation: history.OperationMergeResolve, Path: path, Detail: string(side)}

	_, err := exclusive(ctx, s, draft, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.merges.Resolve(ctx, path, side)
	})
	return err
}

func (s *Service) ContinueMerge(ctx context.Context) error {
	_, err := exclusive(ctx, s, history.EntryDraft{Operation: history.OperationMergeContinue}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.merges.Continue(ctx)
	})
	return err
}

func (s *Service) AbortMerge(ctx context.Context) error {
	_, err := exclusive(ctx, s, history.EntryDraft{Operation: history.OperationMergeAbort}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.merges.Abort(ctx)
	})
	return err
}

// Commit stages paths (everything when empty) and commits them.
func (s *Service) Commit(ctx context.Context, message string, paths []string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: commit message is empty", ErrInvalidArgument)
	}

	draft := history.EntryDraft{Operation: history.OperationCommit, Detail: message}

	_, err := exclusive(ctx, s, draft, func(ctx context.Context) (struct{}, error) {
		if err := s.repo.Add(ctx, paths...); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.repo.Commit(ctx, message)
	})
	return err
}

func (s *Service) Reset(ctx context.Context, hash string, mode git.ResetMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown reset mode %q", ErrInvalidArgument, mode)
	}

	draft := history.EntryDraft{Operation: history.OperationReset, Target: hash, Detail: string(mode)}

	_, err := exclusive(ctx, s, draft, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.ResetTo(ctx, hash, mode)
	})
	return err
}

func (s *Service) Sync(ctx context.Context, action SyncAction) error {
	var (
		op history.Operation
		fn func(context.Context) error
	)

	switch action {
	case SyncFetch:
		op, fn = history.OperationFetch, s.repo.Fetch
	case SyncPull:
		op, fn = history.OperationPull, s.repo.Pull
	case SyncPush:
		op, fn = history.OperationPush, s.repo.Push
	default:
		return fmt.Errorf("%w: unknown sync action %q", ErrInvalidArgument, action)
	}

	_, err := exclusive(ctx, s, history.EntryDraft{Operation: op}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// SyncAsync runs Sync in the background.
func (s *Service) SyncAsync(action SyncAction) (tasks.Task, error) {
	if !action.Valid() {
		return tasks.Task{}, fmt.Errorf("%w: unknown sync action %q", ErrInvalidArgument, action)
	}

	return s.runner.Submit(string(action), func(ctx context.Context) (any, error) {
		return nil, s.Sync(ctx, action)
	})
}

func (s *Service) History(ctx context.Context, filter history.Filter) ([]history.Entry, error) {
	return s.history.List(ctx, filter)
}

func (s *Service) Task(id uuid.UUID) (tasks.Task, error) {
	return s.runner.Get(id)
}

func shared[T any](ctx context.Context, s *Service, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	unlock, err := s.locker.RLock(ctx)
	if err != nil {
		return zero, err
	}
	defer unlock()

	return fn(ctx)
}

// exclusive runs fn under the exclusive lock, then records the attempt.
// annotate may refine the entry from the result.
func exclusive[T any](
	ctx context.Context,
	s *Service,
	draft history.EntryDraft,
	fn func(context.Context) (T, error),
	annotate ...func(*history.EntryDraft, T),
) (T, error) {
	var zero T

	unlock, err := s.locker.Lock(ctx)
	if err != nil {
		return zero, err
	}
	defer unlock()

	started := time.Now()
	result, err := fn(ctx)

	draft.Repository = s.repo.Path()
	if err != nil {
		draft.Outcome = history.OutcomeFailed
		draft.Detail = err.Error()

		var switchErr *transition.SwitchError
		if errors.As(err, &switchErr) {
			draft.Origin = switchErr.Origin
		}
	} else {
		draft.Outcome = history.OutcomeSucceeded
		for _, refine := range annotate {
			refine(&draft, result)
		}
	}

	s.metrics.observe(draft.Operation, draft.Outcome, started)

	// The operation already happened; a history write failure is only logged.
	if _, recErr := s.history.Record(context.WithoutCancel(ctx), draft); recErr != nil {
		s.logger.Warn("operation not recorded", zap.String("operation", string(draft.Operation)), zap.Error(recErr))
	}

	if err != nil {
		return zero, err
	}
	return result, nil
}
