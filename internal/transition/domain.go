package transition

import (
	"context"

	"github.com/branchguard/branchguard/internal/changes"
	"github.com/branchguard/branchguard/internal/divergence"
	"github.com/branchguard/branchguard/internal/stash"
)

type Options struct {
	// Force discards local modifications. It is the only destructive path.
	Force bool
	// AutoStash shelves local modifications before switching.
	AutoStash bool
	// Analyze attaches the divergence between origin and target.
	Analyze bool
	// Window bounds the divergence analysis; zero uses the default.
	Window int
}

type Result struct {
	Success bool
	Message string

	Origin string
	Target string

	Stashed           bool
	HadPendingChanges bool

	Divergence *divergence.Report
}

// Branches is the subset of the git collaborator used to move HEAD.
type Branches interface {
	CurrentBranch(ctx context.Context) (string, error)
	Checkout(ctx context.Context, name string, force bool) error
}

type ChangeSource interface {
	Compute(ctx context.Context) changes.ChangeSet
}

type Stasher interface {
	Create(ctx context.Context, message string) (stash.Outcome, error)
}

type DivergenceDetector interface {
	Detect(ctx context.Context, branchA, branchB string, window int) (divergence.Report, error)
}
