package merge

import (
	"github.com/branchguard/branchguard/internal/git"
	"github.com/branchguard/branchguard/internal/merge"
)

type StateResponse struct {
	Phase      merge.Phase `json:"phase"`
	Branch     string      `json:"branch,omitempty"`
	InProgress bool        `json:"in_progress"`
	OpenFiles  []string    `json:"open_files"`
}

type MergeRequest struct {
	Branch string `json:"branch" validate:"required,min=1,max=255"`
	// Async returns a task immediately instead of waiting for git.
	Async bool `json:"async"`
}

type ConflictsResponse struct {
	Files []string `json:"files"`
}

type ResolveRequest struct {
	Path string   `json:"path" validate:"required,min=1,max=4096"`
	Side git.Side `json:"side" validate:"required,oneof=ours theirs"`
}
