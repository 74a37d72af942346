package workspace

import (
	"context"

	"github.com/branchguard/branchguard/internal/git"
)

// SyncAction is a remote pass-through operation.
type SyncAction string

const (
	SyncFetch SyncAction = "fetch"
	SyncPull  SyncAction = "pull"
	SyncPush  SyncAction = "push"
)

func (a SyncAction) Valid() bool {
	return a == SyncFetch || a == SyncPull || a == SyncPush
}

// Repository is the part of the git collaborator the facade calls directly;
// everything else goes through the domain coordinators.
type Repository interface {
	Path() string
	Init(ctx context.Context, ignoreTemplate string) error

	CurrentBranch(ctx context.Context) (string, error)
	ListBranches(ctx context.Context, local, remote bool) ([]git.Branch, error)
	CreateBranch(ctx context.Context, name string) error

	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	ResetTo(ctx context.Context, hash string, mode git.ResetMode) error

	Fetch(ctx context.Context) error
	Pull(ctx context.Context) error
	Push(ctx context.Context) error
}
