package git

import (
	"context"
	"time"
)

// ResetMode selects how far ResetTo rewinds the working tree.
type ResetMode string

const (
	ResetSoft  ResetMode = "soft"
	ResetMixed ResetMode = "mixed"
	ResetHard  ResetMode = "hard"
)

func (m ResetMode) Valid() bool {
	return m == ResetSoft || m == ResetMixed || m == ResetHard
}

// Side names one parent of a conflicted merge.
type Side string

const (
	SideOurs   Side = "ours"
	SideTheirs Side = "theirs"
)

func (s Side) Valid() bool {
	return s == SideOurs || s == SideTheirs
}

// Branch represents a local or remote branch. Remote branches carry their
// name with the remote prefix stripped.
type Branch struct {
	Name       string
	Remote     bool
	RemoteName string
	Hash       string
	Current    bool
}

// Commit is a single entry of a branch history walk.
type Commit struct {
	Hash      string
	ShortHash string
	When      time.Time
	Author    string
	Message   string
	Files     []string // paths changed relative to the first parent
}

// Collaborator is the narrow version-control surface the rest of the
// service is built on. Failures are free text wrapped in *CommandError or
// one of the package sentinels.
type Collaborator interface {
	CurrentBranch(ctx context.Context) (string, error)
	ListBranches(ctx context.Context, local, remote bool) ([]Branch, error)
	Checkout(ctx context.Context, name string, force bool) error
	CreateBranch(ctx context.Context, name string) error

	Fetch(ctx context.Context) error
	Pull(ctx context.Context) error
	Push(ctx context.Context) error

	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	ResetTo(ctx context.Context, hash string, mode ResetMode) error

	DiffNameOnly(ctx context.Context, filter string) ([]string, error)
	UntrackedFiles(ctx context.Context) ([]string, error)
	UnstagedFiles(ctx context.Context) ([]string, error)
	StagedFiles(ctx context.Context) ([]string, error)
	HasHead(ctx context.Context) (bool, error)
	IndexFiles(ctx context.Context) ([]string, error)

	IterCommits(ctx context.Context, ref string, maxCount int, path string) ([]Commit, error)
	CountCommits(ctx context.Context, rangeSpec string) (int, error)
	IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error)
	ShowFileAtRef(ctx context.Context, path, ref string) (string, error)

	Merge(ctx context.Context, branch string) error
	MergeAbort(ctx context.Context) error
	MergeContinue(ctx context.Context) error
	HasMergeMarker(ctx context.Context) (bool, error)
	CheckoutSide(ctx context.Context, path string, side Side) error

	StashPush(ctx context.Context, message string, includeUntracked bool) error
	StashList(ctx context.Context) ([]string, error)
	StashApply(ctx context.Context, index int, pop bool) error
	StashDrop(ctx context.Context, index int) error

	GitDir(ctx context.Context) (string, error)
}
