package repolock

import "errors"

var ErrLockTimeout = errors.New("repository is locked by another operation")
