package git

import (
	"errors"
	"fmt"
)

var (
	ErrRepositoryNotFound = errors.New("repository not found")
	ErrInvalidRepository  = errors.New("invalid repository")
	ErrBranchNotFound     = errors.New("branch not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrDetachedHead       = errors.New("HEAD is detached")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// DetachedHeadError reports a HEAD that points at a commit instead of a
// branch. It matches ErrDetachedHead.
type DetachedHeadError struct {
	Hash string
}

func (e *DetachedHeadError) Error() string {
	return fmt.Sprintf("%s at %s", ErrDetachedHead, e.Hash)
}

func (e *DetachedHeadError) Is(target error) bool {
	return target == ErrDetachedHead
}

// Short returns the abbreviated commit hash.
func (e *DetachedHeadError) Short() string {
	if len(e.Hash) > shortHashLen {
		return e.Hash[:shortHashLen]
	}
	return e.Hash
}
