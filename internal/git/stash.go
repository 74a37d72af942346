package git

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

func stashRef(index int) string {
	return fmt.Sprintf("stash@{%d}", index)
}

// StashPush shelves local modifications under message.
func (s *Service) StashPush(ctx context.Context, message string, includeUntracked bool) error {
	s.logger.Info("stashing changes", zap.String("message", message))

	args := []string{"stash", "push"}
	if includeUntracked {
		args = append(args, "--include-untracked")
	}
	if message != "" {
		args = append(args, "-m", message)
	}

	_, err := s.mutate(ctx, args...)
	return err
}

// StashList returns the raw stash list lines, most recent first.
func (s *Service) StashList(ctx context.Context) ([]string, error) {
	out, err := s.run(ctx, "stash", "list")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// StashApply restores the shelf at index. pop also removes it; popping the
// most recent shelf addresses it implicitly.
func (s *Service) StashApply(ctx context.Context, index int, pop bool) error {
	if index < 0 {
		return fmt.Errorf("%w: negative stash index %d", ErrInvalidArgument, index)
	}

	s.logger.Info("applying stash", zap.Int("index", index), zap.Bool("pop", pop))

	var args []string
	switch {
	case pop && index == 0:
		args = []string{"stash", "pop"}
	case pop:
		args = []string{"stash", "pop", stashRef(index)}
	default:
		args = []string{"stash", "apply", stashRef(index)}
	}

	_, err := s.mutate(ctx, args...)
	return err
}

func (s *Service) StashDrop(ctx context.Context, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: negative stash index %d", ErrInvalidArgument, index)
	}

	s.logger.Info("dropping stash", zap.Int("index", index))
	_, err := s.mutate(ctx, "stash", "drop", stashRef(index))
	return err
}
