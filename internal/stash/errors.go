package stash

import "errors"

var (
	ErrCreateFailed = errors.New("stash create failed")
	ErrApplyFailed  = errors.New("stash apply failed")
	ErrDropFailed   = errors.New("stash drop failed")
	ErrListFailed   = errors.New("stash list failed")
	ErrInvalidIndex = errors.New("invalid stash index")
)
