package stash

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	listFields   = 3
	fallbackKind = "WIP"
)

// Manager creates, lists, applies and drops shelves. It never retries.
type Manager struct {
	shelf   Shelf
	changes ChangeSource

	logger *zap.Logger
}

func NewManager(shelf Shelf, changes ChangeSource, logger *zap.Logger) *Manager {
	return &Manager{
		shelf:   shelf,
		changes: changes,

		logger: logger,
	}
}

// Create shelves all local modifications, untracked files included. It is
// a no-op when the working tree is clean or git found nothing to save.
func (m *Manager) Create(ctx context.Context, message string) (Outcome, error) {
	set := m.changes.Compute(ctx)
	if !set.HasChanges() && !set.Degraded() {
		m.logger.Info("nothing to stash")
		return OutcomeSkipped, nil
	}

	m.logger.Info("creating stash", zap.String("message", message))

	before, beforeErr := m.shelf.StashList(ctx)

	if err := m.shelf.StashPush(ctx, message, true); err != nil {
		m.logger.Error("failed to create stash", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}

	// git exits 0 with "No local changes to save"; only a new entry counts.
	if beforeErr == nil {
		after, afterErr := m.shelf.StashList(ctx)
		if afterErr == nil && len(after) <= len(before) {
			m.logger.Info("nothing to stash", zap.Bool("degraded", set.Degraded()))
			return OutcomeSkipped, nil
		}
	}

	return OutcomeCreated, nil
}

// List returns the shelves, most recent first. Lines that do not follow
// the "ref: kind: message" layout are kept with a generic kind.
func (m *Manager) List(ctx context.Context) ([]Entry, error) {
	raw, err := m.shelf.StashList(ctx)
	if err != nil {
		m.logger.Error("failed to list stashes", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrListFailed, err)
	}

	entries := make([]Entry, 0, len(raw))
	for i, line := range raw {
		entries = append(entries, parseEntry(i, line))
	}

	return entries, nil
}

// Apply restores the shelf at index, removing it when remove is set.
func (m *Manager) Apply(ctx context.Context, index int, remove bool) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	m.logger.Info("applying stash", zap.Int("index", index), zap.Bool("remove", remove))

	if err := m.shelf.StashApply(ctx, index, remove); err != nil {
		m.logger.Error("failed to apply stash", zap.Int("index", index), zap.Error(err))
		return fmt.Errorf("%w: stash@{%d}: %w", ErrApplyFailed, index, err)
	}

	return nil
}

func (m *Manager) Drop(ctx context.Context, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	m.logger.Info("dropping stash", zap.Int("index", index))

	if err := m.shelf.StashDrop(ctx, index); err != nil {
		m.logger.Error("failed to drop stash", zap.Int("index", index), zap.Error(err))
		return fmt.Errorf("%w: stash@{%d}: %w", ErrDropFailed, index, err)
	}

	return nil
}

func parseEntry(index int, line string) Entry {
	parts := strings.SplitN(line, ": ", listFields)
	if len(parts) < listFields {
		return Entry{
			Index:   index,
			Ref:     fmt.Sprintf("stash@{%d}", index),
			Kind:    fallbackKind,
			Message: line,
			Raw:     line,
		}
	}

	return Entry{
		Index:   index,
		Ref:     parts[0],
		Kind:    parts[1],
		Message: parts[2],
		Raw:     line,
	}
}
