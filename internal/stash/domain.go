package stash

import (
	"context"

	"github.com/branchguard/branchguard/internal/changes"
)

type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped" // nothing to shelve
)

// Entry is one shelf. Index 0 is the most recent.
type Entry struct {
	Index   int
	Ref     string
	Kind    string
	Message string
	Raw     string
}

// Shelf is the subset of the git collaborator the manager drives.
type Shelf interface {
	StashPush(ctx context.Context, message string, includeUntracked bool) error
	StashList(ctx context.Context) ([]string, error)
	StashApply(ctx context.Context, index int, pop bool) error
	StashDrop(ctx context.Context, index int) error
}

// ChangeSource reports local modifications.
type ChangeSource interface {
	Compute(ctx context.Context) changes.ChangeSet
}
