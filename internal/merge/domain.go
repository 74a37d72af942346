package merge

import (
	"context"

	"github.com/branchguard/branchguard/internal/git"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseConflicted Phase = "conflicted"
	PhaseAborted    Phase = "aborted"
	PhaseCompleted  Phase = "completed"
)

// State is derived on every call. InProgress mirrors the collaborator's
// merge marker.
type State struct {
	Phase      Phase
	Branch     string
	InProgress bool
	OpenFiles  []string
}

// Outcome reports how a merge attempt ended. It is also the result of an
// async merge task, hence the tags.
type Outcome struct {
	Phase     Phase    `json:"phase"`
	Branch    string   `json:"branch"`
	Conflicts []string `json:"conflicts,omitempty"`
}

// Merger is the subset of the git collaborator the coordinator drives.
type Merger interface {
	Merge(ctx context.Context, branch string) error
	MergeAbort(ctx context.Context) error
	MergeContinue(ctx context.Context) error
	HasMergeMarker(ctx context.Context) (bool, error)
	DiffNameOnly(ctx context.Context, filter string) ([]string, error)
	CheckoutSide(ctx context.Context, path string, side git.Side) error
}
