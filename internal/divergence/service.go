package divergence

import (
	"context"
	"errors"
	"fmt"

	"github.com/branchguard/branchguard/internal/git"
	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
)

const defaultDiffContext = 3

type Analyzer struct {
	history History

	window      int
	diffContext int

	logger *zap.Logger
}

func NewAnalyzer(config Config, history History, logger *zap.Logger) *Analyzer {
	window := config.Window
	if window <= 0 {
		window = DefaultWindow
	}
	diffContext := config.DiffContext
	if diffContext <= 0 {
		diffContext = defaultDiffContext
	}

	return &Analyzer{
		history: history,

		window:      window,
		diffContext: diffContext,

		logger: logger,
	}
}

// Detect compares the most recent touch of every file on branches a and b
// within the last window commits of each. Files whose latest touch is the
// same commit on both sides are not divergent. A non-positive window uses
// the configured default.
func (a *Analyzer) Detect(ctx context.Context, branchA, branchB string, window int) (Report, error) {
	if window <= 0 {
		window = a.window
	}

	logger := a.logger.With(
		zap.String("branch_a", branchA),
		zap.String("branch_b", branchB),
		zap.Int("window", window),
	)
	logger.Info("detecting divergence")

	touchesA, err := a.latestTouches(ctx, branchA, window)
	if err != nil {
		logger.Error("failed to inspect history", zap.String("branch", branchA), zap.Error(err))
		return Report{}, err
	}
	touchesB, err := a.latestTouches(ctx, branchB, window)
	if err != nil {
		logger.Error("failed to inspect history", zap.String("branch", branchB), zap.Error(err))
		return Report{}, err
	}

	report := Report{
		BranchA: branchA,
		BranchB: branchB,
		Window:  window,
		Files:   map[string]Record{},
	}

	for path, touchA := range touchesA {
		touchB, ok := touchesB[path]
		switch {
		case !ok:
			report.Files[path] = Record{Path: path, Kind: KindOnlyInOne, A: touchA, OnlyIn: SideA}
		case touchA.Hash != touchB.Hash:
			report.Files[path] = bothChanged(path, touchA, touchB)
		}
	}
	for path, touchB := range touchesB {
		if _, ok := touchesA[path]; !ok {
			report.Files[path] = Record{Path: path, Kind: KindOnlyInOne, B: touchB, OnlyIn: SideB}
		}
	}

	logger.Info("divergence detected", zap.Int("files", len(report.Files)))
	return report, nil
}

// Feasibility checks whether source can be fast-forwarded into the current
// branch and counts the commits each side is missing.
func (a *Analyzer) Feasibility(ctx context.Context, source string) (Feasibility, error) {
	current, err := a.history.CurrentBranch(ctx)
	if err != nil {
		return Feasibility{}, fmt.Errorf("%w: %w", ErrFeasibilityFailed, err)
	}

	logger := a.logger.With(zap.String("current", current), zap.String("source", source))
	logger.Info("checking merge feasibility")

	fastForward, err := a.history.IsAncestor(ctx, current, source)
	if err != nil {
		logger.Error("failed to check ancestry", zap.Error(err))
		return Feasibility{}, fmt.Errorf("%w: %w", ErrFeasibilityFailed, err)
	}

	ahead, err := a.history.CountCommits(ctx, current+".."+source)
	if err != nil {
		logger.Error("failed to count commits ahead", zap.Error(err))
		return Feasibility{}, fmt.Errorf("%w: %w", ErrFeasibilityFailed, err)
	}

	behind, err := a.history.CountCommits(ctx, source+".."+current)
	if err != nil {
		logger.Error("failed to count commits behind", zap.Error(err))
		return Feasibility{}, fmt.Errorf("%w: %w", ErrFeasibilityFailed, err)
	}

	return Feasibility{
		Current:       current,
		Source:        source,
		IsFastForward: fastForward,
		CommitsAhead:  ahead,
		CommitsBehind: behind,
		RequiresMerge: ahead > 0 && behind > 0,
	}, nil
}

// CompareFile loads path from both branches and diffs them. A branch that
// lacks the file yields an absent version rather than an error.
func (a *Analyzer) CompareFile(ctx context.Context, path, branchA, branchB string) (FileComparison, error) {
	a.logger.Debug("comparing file",
		zap.String("file", path),
		zap.String("branch_a", branchA),
		zap.String("branch_b", branchB))

	versionA, err := a.fileVersion(ctx, path, branchA)
	if err != nil {
		return FileComparison{}, err
	}
	versionB, err := a.fileVersion(ctx, path, branchB)
	if err != nil {
		return FileComparison{}, err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(versionA.Content),
		B:        difflib.SplitLines(versionB.Content),
		FromFile: branchA + ":" + path,
		ToFile:   branchB + ":" + path,
		Context:  a.diffContext,
	})
	if err != nil {
		return FileComparison{}, fmt.Errorf("%w: %w", ErrCompareFailed, err)
	}

	return FileComparison{
		Path:      path,
		A:         versionA,
		B:         versionB,
		Identical: versionA.Present == versionB.Present && versionA.Content == versionB.Content,
		Diff:      diff,
	}, nil
}

func (a *Analyzer) fileVersion(ctx context.Context, path, branch string) (FileVersion, error) {
	content, err := a.history.ShowFileAtRef(ctx, path, branch)
	if errors.Is(err, git.ErrFileNotFound) {
		return FileVersion{Branch: branch}, nil
	}
	if err != nil {
		return FileVersion{}, fmt.Errorf("%w: %s at %s: %w", ErrCompareFailed, path, branch, err)
	}

	return FileVersion{Branch: branch, Present: true, Content: content}, nil
}

// latestTouches maps each path to the newest commit in the window that
// changed it.
func (a *Analyzer) latestTouches(ctx context.Context, branch string, window int) (map[string]*FileTouch, error) {
	commits, err := a.history.IterCommits(ctx, branch, window, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInspectionFailed, branch, err)
	}

	touches := map[string]*FileTouch{}
	for _, c := range commits {
		for _, path := range c.Files {
			if seen, ok := touches[path]; ok && !c.When.After(seen.When) {
				continue
			}
			touches[path] = &FileTouch{
				Hash:      c.Hash,
				ShortHash: c.ShortHash,
				When:      c.When,
				Author:    c.Author,
				Message:   c.Message,
			}
		}
	}

	return touches, nil
}

func bothChanged(path string, touchA, touchB *FileTouch) Record {
	record := Record{
		Path: path,
		Kind: KindBothChanged,
		A:    touchA,
		B:    touchB,
	}

	switch {
	case touchA.When.After(touchB.When):
		record.MoreRecent = SideA
		record.Gap = touchA.When.Sub(touchB.When)
	case touchB.When.After(touchA.When):
		record.MoreRecent = SideB
		record.Gap = touchB.When.Sub(touchA.When)
	default:
		record.MoreRecent = SideEqual
	}

	return record
}
