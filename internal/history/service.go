package history

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type Service struct {
	entries *Repository

	logger *zap.Logger
}

func NewService(entries *Repository, logger *zap.Logger) *Service {
	return &Service{
		entries: entries,

		logger: logger,
	}
}

// Record appends an entry to the log.
func (s *Service) Record(ctx context.Context, draft EntryDraft) (Entry, error) {
	entry, err := s.entries.Create(ctx, draft)
	if err != nil {
		s.logger.Error("failed to record operation", zap.String("operation", string(draft.Operation)), zap.Error(err))
		return Entry{}, err
	}

	s.logger.Debug(
		"operation recorded",
		zap.String("id", entry.ID.String()),
		zap.String("operation", string(entry.Operation)),
		zap.String("outcome", string(entry.Outcome)),
	)
	return entry, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	s.logger.Debug("getting history entry", zap.String("id", id.String()))

	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get history entry", zap.String("id", id.String()), zap.Error(err))
		return Entry{}, err
	}

	return entry, nil
}

// List returns the most recent entries first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultLimit
	case filter.Limit > maxLimit:
		filter.Limit = maxLimit
	}

	s.logger.Debug("listing history", zap.String("operation", string(filter.Operation)), zap.Int("limit", filter.Limit))

	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list history", zap.Error(err))
		return nil, err
	}

	return entries, nil
}
