package history

import (
	"time"

	"github.com/google/uuid"
)

type Operation string

const (
	OperationInit          Operation = "init"
	OperationSwitch        Operation = "switch"
	OperationBranchCreate  Operation = "branch_create"
	OperationStashCreate   Operation = "stash_create"
	OperationStashApply    Operation = "stash_apply"
	OperationStashDrop     Operation = "stash_drop"
	OperationMerge         Operation = "merge"
	OperationMergeResolve  Operation = "merge_resolve"
	OperationMergeContinue Operation = "merge_continue"
	OperationMergeAbort    Operation = "merge_abort"
	OperationCommit        Operation = "commit"
	OperationReset         Operation = "reset"
	OperationFetch         Operation = "fetch"
	OperationPull          Operation = "pull"
	OperationPush          Operation = "push"
)

type Outcome string

const (
	OutcomeSucceeded  Outcome = "succeeded"
	OutcomeFailed     Outcome = "failed"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeConflicted Outcome = "conflicted"
)

// EntryDraft describes an operation that was attempted against the
// repository.
type EntryDraft struct {
	Operation  Operation
	Repository string

	Origin string
	Target string
	Branch string

	StashIndex *int
	Path       string

	Outcome Outcome
	Detail  string
}

type Entry struct {
	EntryDraft

	ID        uuid.UUID
	CreatedAt time.Time
}

// Filter narrows List. Zero Limit selects the default page size.
type Filter struct {
	Operation Operation
	Limit     int
}
