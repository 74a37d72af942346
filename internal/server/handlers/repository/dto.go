package repository

import "github.com/branchguard/branchguard/internal/git"

type CommitRequest struct {
	Message string `json:"message" validate:"required,min=1,max=10000"`
	// Paths to stage; empty stages everything.
	Paths []string `json:"paths"   validate:"dive,required"`
}

type ResetRequest struct {
	Hash string        `json:"hash" validate:"required,min=1,max=255"`
	Mode git.ResetMode `json:"mode" validate:"required,oneof=soft mixed hard"`
}

type SyncQuery struct {
	Async bool `query:"async"`
}
