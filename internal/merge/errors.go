package merge

import "errors"

var (
	ErrMergeInProgress     = errors.New("a merge is already in progress")
	ErrNoMergeInProgress   = errors.New("no merge in progress")
	ErrUnresolvedConflicts = errors.New("unresolved conflicts remain")
	ErrNotConflicted       = errors.New("file is not in conflict")
	ErrInvalidSide         = errors.New("invalid resolution side")
	ErrMergeFailed         = errors.New("merge failed")
	ErrResolveFailed       = errors.New("conflict resolution failed")
	ErrContinueFailed      = errors.New("merge continue failed")
	ErrAbortFailed         = errors.New("merge abort failed")
	ErrStateUnavailable    = errors.New("merge state unavailable")
)
