package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/branchguard/branchguard/pkg/badgerfx"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type Repository struct {
	db      *badger.DB
	entries *badgerfx.Repository[*entryModel]
}

func NewRepository(db *badger.DB) *Repository {
	return &Repository{
		db:      db,
		entries: badgerfx.NewRepository(func() *entryModel { return &entryModel{} }),
	}
}

// Create stores a new entry.
func (r *Repository) Create(_ context.Context, draft EntryDraft) (Entry, error) {
	model := newEntryModel(draft)

	if err := r.db.Update(func(txn *badger.Txn) error {
		return r.entries.Write(txn, model)
	}); err != nil {
		return Entry{}, fmt.Errorf("failed to create history entry: %w", err)
	}

	return newEntry(model), nil
}

// GetByID returns a single entry.
func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (Entry, error) {
	var model *entryModel

	err := r.db.View(func(txn *badger.Txn) error {
		found, err := r.entries.Read(txn, idKey(id))
		if err == nil {
			model = found
		}
		return err
	})
	if errors.Is(err, badgerfx.ErrNotFound) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get history entry: %w", err)
	}

	return newEntry(model), nil
}

// List returns entries newest first.
func (r *Repository) List(_ context.Context, filter Filter) ([]Entry, error) {
	var models []*entryModel

	err := r.db.View(func(txn *badger.Txn) error {
		options := badgerfx.ScanOptions{Reverse: true, Limit: filter.Limit}

		var err error
		if filter.Operation != "" {
			models, err = r.entries.ListByIndex(txn, operationPrefix(filter.Operation), options)
		} else {
			models, err = r.entries.List(txn, prefixByID, options)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]Entry, 0, len(models))
	for _, model := range models {
		entries = append(entries, newEntry(model))
	}

	return entries, nil
}
