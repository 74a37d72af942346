package badgerfx

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type EntityFactory[T Entity] func() T

// Repository reads and writes entities of one type inside caller-owned
// transactions.
type Repository[T Entity] struct {
	factory EntityFactory[T]
}

func NewRepository[T Entity](factory EntityFactory[T]) *Repository[T] {
	return &Repository[T]{
		factory: factory,
	}
}

// ScanOptions controls List and ListByIndex.
type ScanOptions struct {
	// Reverse iterates from the last key under the prefix.
	Reverse bool
	// Limit stops after this many entities; zero means no limit.
	Limit int
}

// List decodes every entity stored under prefix.
func (r *Repository[T]) List(txn *badger.Txn, prefix string, options ScanOptions) ([]T, error) {
	var entities []T

	err := r.scan(txn, prefix, options, func(item *badger.Item) error {
		entity, err := r.decode(item)
		if err != nil {
			return err
		}

		entities = append(entities, entity)
		return nil
	})

	return entities, err
}

// ListByIndex walks index keys under prefix and resolves each to its entity.
func (r *Repository[T]) ListByIndex(txn *badger.Txn, prefix string, options ScanOptions) ([]T, error) {
	var entities []T

	err := r.scan(txn, prefix, options, func(item *badger.Item) error {
		key, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("failed to get entity key: %w", err)
		}

		entity, err := r.Read(txn, string(key))
		if err != nil {
			return err
		}

		entities = append(entities, entity)
		return nil
	})

	return entities, err
}

func (r *Repository[T]) Read(txn *badger.Txn, key string) (T, error) {
	var zero T

	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return zero, fmt.Errorf("failed to get entity: %w", err)
	}

	return r.decode(item)
}

func (r *Repository[T]) Write(txn *badger.Txn, entity T) error {
	data, err := entity.MarshalStorage()
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	if indexErr := r.CreateIndexes(txn, entity); indexErr != nil {
		return indexErr
	}

	if setErr := txn.Set([]byte(entity.StorageKey()), data); setErr != nil {
		return fmt.Errorf("failed to store entity: %w", setErr)
	}

	return nil
}

func (r *Repository[T]) Delete(txn *badger.Txn, key string) error {
	entity, err := r.Read(txn, key)
	if err != nil {
		return err
	}

	if indexErr := r.DeleteIndexes(txn, entity); indexErr != nil {
		return indexErr
	}

	if delErr := txn.Delete([]byte(key)); delErr != nil {
		return fmt.Errorf("failed to delete entity: %w", delErr)
	}

	return nil
}

func (r *Repository[T]) CreateIndexes(txn *badger.Txn, entity T) error {
	key := []byte(entity.StorageKey())
	for _, index := range entity.StorageIndexes() {
		if err := txn.Set([]byte(index), key); err != nil {
			return fmt.Errorf("failed to set entity index: %w", err)
		}
	}

	return nil
}

func (r *Repository[T]) DeleteIndexes(txn *badger.Txn, entity T) error {
	for _, index := range entity.StorageIndexes() {
		if err := txn.Delete([]byte(index)); err != nil {
			return fmt.Errorf("failed to delete entity index: %w", err)
		}
	}

	return nil
}

func (r *Repository[T]) scan(txn *badger.Txn, prefix string, options ScanOptions, fn func(*badger.Item) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = options.Reverse
	if options.Limit > 0 && options.Limit < opts.PrefetchSize {
		opts.PrefetchSize = options.Limit
	}

	validPrefix := []byte(prefix)
	seekPrefix := []byte(prefix)
	if options.Reverse {
		seekPrefix = append(seekPrefix, SeekEnd)
	}

	it := txn.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Seek(seekPrefix); it.ValidForPrefix(validPrefix); it.Next() {
		if options.Limit > 0 && count >= options.Limit {
			break
		}

		if err := fn(it.Item()); err != nil {
			return err
		}
		count++
	}

	return nil
}

func (r *Repository[T]) decode(item *badger.Item) (T, error) {
	var zero T

	entity := r.factory()
	if err := item.Value(entity.UnmarshalStorage); err != nil {
		return zero, fmt.Errorf("failed to unmarshal entity: %w", err)
	}

	return entity, nil
}
