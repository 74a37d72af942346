package badgerfx

import (
	"encoding/json"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type note struct {
	ID  string `json:"id"`
	Tag string `json:"tag"`
}

func (n *note) StorageKey() string { return "note:id:" + n.ID }

func (n *note) StorageIndexes() []string { return []string{"note:tag:" + n.Tag + ":" + n.ID} }

func (n *note) MarshalStorage() ([]byte, error) { return json.Marshal(n) }

func (n *note) UnmarshalStorage(data []byte) error { return json.Unmarshal(data, n) }

func openDB(t *testing.T) *badger.DB {
	t.Helper()

	db, err := New(Config{InMemory: true}, newLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestRepository_WriteReadList(t *testing.T) {
	db := openDB(t)
	repo := NewRepository(func() *note { return &note{} })

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		for _, n := range []*note{{ID: "1", Tag: "x"}, {ID: "2", Tag: "y"}, {ID: "3", Tag: "x"}} {
			if err := repo.Write(txn, n); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.View(func(txn *badger.Txn) error {
		got, err := repo.Read(txn, "note:id:2")
		require.NoError(t, err)
		assert.Equal(t, "y", got.Tag)

		all, err := repo.List(txn, "note:id:", ScanOptions{Reverse: true, Limit: 2})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "3", all[0].ID)
		assert.Equal(t, "2", all[1].ID)

		tagged, err := repo.ListByIndex(txn, "note:tag:x:", ScanOptions{})
		require.NoError(t, err)
		require.Len(t, tagged, 2)
		assert.Equal(t, "1", tagged[0].ID)
		assert.Equal(t, "3", tagged[1].ID)

		return nil
	}))
}

func TestRepository_NotFoundAndDelete(t *testing.T) {
	db := openDB(t)
	repo := NewRepository(func() *note { return &note{} })

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return repo.Write(txn, &note{ID: "1", Tag: "x"})
	}))

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return repo.Delete(txn, "note:id:1")
	}))

	require.NoError(t, db.View(func(txn *badger.Txn) error {
		_, err := repo.Read(txn, "note:id:1")
		require.ErrorIs(t, err, ErrNotFound)

		tagged, err := repo.ListByIndex(txn, "note:tag:x:", ScanOptions{})
		require.NoError(t, err)
		assert.Empty(t, tagged)

		return nil
	}))
}
