package changes

import (
	"context"

	"github.com/samber/lo"
)

// Group identifies one of the three disjoint change groups.
type Group string

const (
	GroupUntracked Group = "untracked"
	GroupUnstaged  Group = "unstaged"
	GroupStaged    Group = "staged"
)

// ChangeSet is a snapshot of local modifications. It is never cached.
type ChangeSet struct {
	Untracked []string
	Unstaged  []string
	Staged    []string

	// Failures records groups whose query failed; such groups are empty.
	Failures map[Group]error
}

// HasChanges reports whether any group is non-empty.
func (c ChangeSet) HasChanges() bool {
	return len(c.Untracked)+len(c.Unstaged)+len(c.Staged) > 0
}

// Degraded reports whether at least one group could not be read.
func (c ChangeSet) Degraded() bool {
	return len(c.Failures) > 0
}

// All returns every path across the groups, de-duplicated.
func (c ChangeSet) All() []string {
	return lo.Uniq(lo.Flatten([][]string{c.Untracked, c.Unstaged, c.Staged}))
}

// StatusReader is the subset of the git collaborator the inspector reads.
type StatusReader interface {
	UntrackedFiles(ctx context.Context) ([]string, error)
	UnstagedFiles(ctx context.Context) ([]string, error)
	StagedFiles(ctx context.Context) ([]string, error)
	HasHead(ctx context.Context) (bool, error)
	IndexFiles(ctx context.Context) ([]string, error)
}
