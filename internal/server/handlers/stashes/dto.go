package stashes

import "github.com/branchguard/branchguard/internal/stash"

type StashResponse struct {
	Index   int    `json:"index"`
	Ref     string `json:"ref"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newStashResponse(entry stash.Entry) StashResponse {
	return StashResponse{
		Index:   entry.Index,
		Ref:     entry.Ref,
		Kind:    entry.Kind,
		Message: entry.Message,
	}
}

type CreateRequest struct {
	Message string `json:"message" validate:"max=500"`
}

type CreateResponse struct {
	Outcome stash.Outcome `json:"outcome"`
}

type ApplyQuery struct {
	// Remove pops the stash after applying it.
	Remove bool `query:"remove"`
}
