package stash

import (
	"context"
	"errors"
	"testing"

	"github.com/branchguard/branchguard/internal/changes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeShelf struct {
	push  func(message string, includeUntracked bool) error
	list  func() ([]string, error)
	apply func(index int, pop bool) error
	drop  func(index int) error
}

func (f *fakeShelf) StashPush(_ context.Context, message string, includeUntracked bool) error {
	if f.push == nil {
		return errors.New("unexpected StashPush call")
	}
	return f.push(message, includeUntracked)
}

func (f *fakeShelf) StashList(context.Context) ([]string, error) {
	if f.list == nil {
		return nil, errors.New("unexpected StashList call")
	}
	return f.list()
}

func (f *fakeShelf) StashApply(_ context.Context, index int, pop bool) error {
	if f.apply == nil {
		return errors.New("unexpected StashApply call")
	}
	return f.apply(index, pop)
}

func (f *fakeShelf) StashDrop(_ context.Context, index int) error {
	if f.drop == nil {
		return errors.New("unexpected StashDrop call")
	}
	return f.drop(index)
}

type staticChanges changes.ChangeSet

func (s staticChanges) Compute(context.Context) changes.ChangeSet {
	return changes.ChangeSet(s)
}

func TestManager_CreateSkipsCleanTree(t *testing.T) {
	manager := NewManager(&fakeShelf{}, staticChanges{}, zaptest.NewLogger(t))

	outcome, err := manager.Create(context.Background(), "msg")

	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
}

func TestManager_Create(t *testing.T) {
	var gotMessage string
	var gotUntracked bool
	var stashes []string
	shelf := &fakeShelf{
		push: func(message string, includeUntracked bool) error {
			gotMessage, gotUntracked = message, includeUntracked
			stashes = append([]string{"stash@{0}: On main: " + message}, stashes...)
			return nil
		},
		list: func() ([]string, error) { return stashes, nil },
	}
	manager := NewManager(shelf, staticChanges{Untracked: []string{"new.txt"}}, zaptest.NewLogger(t))

	outcome, err := manager.Create(context.Background(), "save work")

	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, "save work", gotMessage)
	assert.True(t, gotUntracked)
}

func TestManager_CreateNothingSavedOnDegradedTree(t *testing.T) {
	pushed := false
	shelf := &fakeShelf{
		// git reports "No local changes to save" and exits 0.
		push: func(string, bool) error {
			pushed = true
			return nil
		},
		list: func() ([]string, error) { return []string{}, nil },
	}
	set := staticChanges{Failures: map[changes.Group]error{changes.GroupStaged: errors.New("fatal: bad object HEAD")}}
	manager := NewManager(shelf, set, zaptest.NewLogger(t))

	outcome, err := manager.Create(context.Background(), "msg")

	require.NoError(t, err)
	assert.True(t, pushed)
	assert.Equal(t, OutcomeSkipped, outcome)
}

func TestManager_CreateFailureKeepsCollaboratorText(t *testing.T) {
	shelf := &fakeShelf{push: func(string, bool) error {
		return errors.New("error: could not write index")
	}}
	manager := NewManager(shelf, staticChanges{Staged: []string{"a.txt"}}, zaptest.NewLogger(t))

	_, err := manager.Create(context.Background(), "msg")

	require.ErrorIs(t, err, ErrCreateFailed)
	assert.Contains(t, err.Error(), "stash create failed")
	assert.Contains(t, err.Error(), "error: could not write index")
}

func TestManager_List(t *testing.T) {
	shelf := &fakeShelf{list: func() ([]string, error) {
		return []string{
			"stash@{0}: On main: auto-stash: switching from main to dev",
			"stash@{1}: WIP on dev: 1a2b3c4 fix: the parser",
			"garbled line",
		}, nil
	}}
	manager := NewManager(shelf, staticChanges{}, zaptest.NewLogger(t))

	entries, err := manager.List(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, Entry{
		Index:   0,
		Ref:     "stash@{0}",
		Kind:    "On main",
		Message: "auto-stash: switching from main to dev",
		Raw:     "stash@{0}: On main: auto-stash: switching from main to dev",
	}, entries[0])
	assert.Equal(t, "WIP on dev", entries[1].Kind)
	assert.Equal(t, "1a2b3c4 fix: the parser", entries[1].Message)

	assert.Equal(t, Entry{
		Index:   2,
		Ref:     "stash@{2}",
		Kind:    "WIP",
		Message: "garbled line",
		Raw:     "garbled line",
	}, entries[2])
}

func TestManager_ListFailure(t *testing.T) {
	shelf := &fakeShelf{list: func() ([]string, error) { return nil, errors.New("boom") }}
	manager := NewManager(shelf, staticChanges{}, zaptest.NewLogger(t))

	_, err := manager.List(context.Background())

	assert.ErrorIs(t, err, ErrListFailed)
}

func TestManager_Apply(t *testing.T) {
	tests := []struct {
		name   string
		index  int
		remove bool
	}{
		{"pop most recent", 0, true},
		{"pop older", 2, true},
		{"apply and keep", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			shelf := &fakeShelf{apply: func(index int, pop bool) error {
				called = true
				assert.Equal(t, tt.index, index)
				assert.Equal(t, tt.remove, pop)
				return nil
			}}
			manager := NewManager(shelf, staticChanges{}, zaptest.NewLogger(t))

			require.NoError(t, manager.Apply(context.Background(), tt.index, tt.remove))
			assert.True(t, called)
		})
	}
}

func TestManager_ApplyFailure(t *testing.T) {
	shelf := &fakeShelf{apply: func(int, bool) error {
		return errors.New("CONFLICT (content): Merge conflict in a.txt")
	}}
	manager := NewManager(shelf, staticChanges{}, zaptest.NewLogger(t))

	err := manager.Apply(context.Background(), 1, true)

	require.ErrorIs(t, err, ErrApplyFailed)
	assert.Contains(t, err.Error(), "stash@{1}")
	assert.Contains(t, err.Error(), "Merge conflict in a.txt")
}

func TestManager_RejectsNegativeIndex(t *testing.T) {
	manager := NewManager(&fakeShelf{}, staticChanges{}, zaptest.NewLogger(t))

	require.ErrorIs(t, manager.Apply(context.Background(), -1, false), ErrInvalidIndex)
	require.ErrorIs(t, manager.Drop(context.Background(), -1), ErrInvalidIndex)
}

func TestManager_Drop(t *testing.T) {
	var dropped []int
	shelf := &fakeShelf{drop: func(index int) error {
		if index > 0 {
			return errors.New("error: stash@{5} is not a valid reference")
		}
		dropped = append(dropped, index)
		return nil
	}}
	manager := NewManager(shelf, staticChanges{}, zaptest.NewLogger(t))

	require.NoError(t, manager.Drop(context.Background(), 0))
	assert.Equal(t, []int{0}, dropped)

	err := manager.Drop(context.Background(), 5)
	require.ErrorIs(t, err, ErrDropFailed)
	assert.Contains(t, err.Error(), "not a valid reference")
}
