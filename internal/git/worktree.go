package git

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Checkout switches the working tree to an existing branch. force discards
// local modifications that would otherwise block the switch.
func (s *Service) Checkout(ctx context.Context, name string, force bool) error {
	s.logger.Info("checking out branch", zap.String("branch", name), zap.Bool("force", force))

	args := []string{"checkout"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, name, "--")

	if _, err := s.mutate(ctx, args...); err != nil {
		s.logger.Error("failed to checkout branch", zap.String("branch", name), zap.Error(err))
		return err
	}

	return nil
}

// CreateBranch creates name at HEAD without switching to it.
func (s *Service) CreateBranch(ctx context.Context, name string) error {
	s.logger.Info("creating branch", zap.String("branch", name))

	if _, err := s.mutate(ctx, "branch", name); err != nil {
		s.logger.Error("failed to create branch", zap.String("branch", name), zap.Error(err))
		return err
	}

	return nil
}

func (s *Service) Fetch(ctx context.Context) error {
	s.logger.Info("fetching", zap.String("path", s.config.Path))
	_, err := s.mutate(ctx, "fetch", "--prune")
	return err
}

func (s *Service) Pull(ctx context.Context) error {
	s.logger.Info("pulling", zap.String("path", s.config.Path))
	_, err := s.mutate(ctx, "pull", "--no-edit")
	return err
}

func (s *Service) Push(ctx context.Context) error {
	s.logger.Info("pushing", zap.String("path", s.config.Path))
	_, err := s.mutate(ctx, "push")
	return err
}

// Add stages paths. No paths stages everything.
func (s *Service) Add(ctx context.Context, paths ...string) error {
	args := []string{"add"}
	if len(paths) == 0 {
		args = append(args, "--all")
	} else {
		args = append(args, "--")
		args = append(args, paths...)
	}

	_, err := s.mutate(ctx, args...)
	return err
}

func (s *Service) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: empty commit message", ErrInvalidArgument)
	}

	s.logger.Info("committing", zap.String("message", message))
	_, err := s.mutate(ctx, "commit", "-m", message)
	return err
}

// ResetTo moves the current branch to hash.
func (s *Service) ResetTo(ctx context.Context, hash string, mode ResetMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown reset mode %q", ErrInvalidArgument, mode)
	}

	s.logger.Info("resetting", zap.String("hash", hash), zap.String("mode", string(mode)))
	_, err := s.mutate(ctx, "reset", "--"+string(mode), hash)
	return err
}

// DiffNameOnly lists worktree paths that differ from the index, restricted by
// a --diff-filter expression when filter is set.
func (s *Service) DiffNameOnly(ctx context.Context, filter string) ([]string, error) {
	args := []string{"diff", "--name-only"}
	if filter != "" {
		args = append(args, "--diff-filter="+filter)
	}

	out, err := s.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

func (s *Service) UntrackedFiles(ctx context.Context) ([]string, error) {
	out, err := s.run(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

func (s *Service) UnstagedFiles(ctx context.Context) ([]string, error) {
	return s.DiffNameOnly(ctx, "")
}

// StagedFiles compares the index with HEAD. It fails on an unborn branch;
// use IndexFiles there.
func (s *Service) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := s.run(ctx, "diff", "--name-only", "--cached", "HEAD")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

func (s *Service) IndexFiles(ctx context.Context) ([]string, error) {
	out, err := s.run(ctx, "ls-files", "--cached")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// CountCommits counts the commits selected by a revision range such as
// "main..feature".
func (s *Service) CountCommits(ctx context.Context, rangeSpec string) (int, error) {
	out, err := s.run(ctx, "rev-list", "--count", rangeSpec)
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q: %w", out, err)
	}
	return count, nil
}

func (s *Service) Merge(ctx context.Context, branch string) error {
	s.logger.Info("merging", zap.String("branch", branch))

	args := []string{"merge", "--no-edit"}
	if s.config.MergeMessage != "" {
		args = append(args, "-m", strings.ReplaceAll(s.config.MergeMessage, "%s", branch))
	}

	_, err := s.mutate(ctx, append(args, branch)...)
	return err
}

func (s *Service) MergeAbort(ctx context.Context) error {
	s.logger.Info("aborting merge")
	_, err := s.mutate(ctx, "merge", "--abort")
	return err
}

// MergeContinue records the merge commit with the prepared message.
func (s *Service) MergeContinue(ctx context.Context) error {
	s.logger.Info("concluding merge")
	_, err := s.mutate(ctx, "commit", "--no-edit")
	return err
}

// HasMergeMarker reports whether a merge is waiting to be concluded.
func (s *Service) HasMergeMarker(ctx context.Context) (bool, error) {
	_, err := s.run(ctx, "rev-parse", "-q", "--verify", "MERGE_HEAD")
	if err == nil {
		return true, nil
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 {
		return false, nil
	}
	return false, err
}

// CheckoutSide takes one side of a conflicted path and stages it.
func (s *Service) CheckoutSide(ctx context.Context, path string, side Side) error {
	if !side.Valid() {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidArgument, side)
	}

	s.logger.Info("resolving conflict", zap.String("file", path), zap.String("side", string(side)))

	if _, err := s.mutate(ctx, "checkout", "--"+string(side), "--", path); err != nil {
		return err
	}
	return s.Add(ctx, path)
}

// GitDir returns the absolute path of the repository metadata directory.
func (s *Service) GitDir(ctx context.Context) (string, error) {
	out, err := s.run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
