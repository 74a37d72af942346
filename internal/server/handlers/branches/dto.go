package branches

import (
	"github.com/branchguard/branchguard/internal/changes"
	"github.com/branchguard/branchguard/internal/git"
	"github.com/branchguard/branchguard/internal/server/handlers/common"
	"github.com/branchguard/branchguard/internal/transition"
)

type ChangesResponse struct {
	Untracked  []string          `json:"untracked"`
	Unstaged   []string          `json:"unstaged"`
	Staged     []string          `json:"staged"`
	HasChanges bool              `json:"has_changes"`
	Failures   map[string]string `json:"failures,omitempty"`
}

func newChangesResponse(set changes.ChangeSet) ChangesResponse {
	response := ChangesResponse{
		Untracked:  nonNil(set.Untracked),
		Unstaged:   nonNil(set.Unstaged),
		Staged:     nonNil(set.Staged),
		HasChanges: set.HasChanges(),
	}

	if set.Degraded() {
		response.Failures = make(map[string]string, len(set.Failures))
		for group, err := range set.Failures {
			response.Failures[string(group)] = err.Error()
		}
	}

	return response
}

type ListQuery struct {
	Local  *bool `query:"local"`
	Remote *bool `query:"remote"`
}

type BranchResponse struct {
	Name       string `json:"name"`
	Remote     bool   `json:"remote"`
	RemoteName string `json:"remote_name,omitempty"`
	Hash       string `json:"hash"`
	Current    bool   `json:"current"`
}

func newBranchResponse(b git.Branch) BranchResponse {
	return BranchResponse{
		Name:       b.Name,
		Remote:     b.Remote,
		RemoteName: b.RemoteName,
		Hash:       b.Hash,
		Current:    b.Current,
	}
}

type CreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255,excludesall= ~^:?*["`
}

type SwitchRequest struct {
	Target    string `json:"target"     validate:"required,min=1,max=255"`
	Force     bool   `json:"force"`
	AutoStash bool   `json:"auto_stash"`
	Analyze   bool   `json:"analyze"`
	Window    int    `json:"window"     validate:"min=0,max=10000"`
}

type SwitchResponse struct {
	Success           bool                       `json:"success"`
	Message           string                     `json:"message"`
	Origin            string                     `json:"origin"`
	Target            string                     `json:"target"`
	Stashed           bool                       `json:"stashed"`
	HadPendingChanges bool                       `json:"had_pending_changes"`
	Divergence        *common.DivergenceResponse `json:"divergence,omitempty"`
}

// SwitchErrorResponse is the body of a refused or failed switch.
type SwitchErrorResponse struct {
	Kind              transition.Kind `json:"kind"`
	Reason            string          `json:"reason"`
	Origin            string          `json:"origin,omitempty"`
	Target            string          `json:"target"`
	HadPendingChanges bool            `json:"had_pending_changes"`
	Pending           []string        `json:"pending,omitempty"`
	Stashed           bool            `json:"stashed"`
}

func nonNil(paths []string) []string {
	if paths == nil {
		return []string{}
	}
	return paths
}
