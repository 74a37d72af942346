package tasks

import "errors"

var (
	ErrNotFound     = errors.New("task not found")
	ErrShuttingDown = errors.New("task runner is shutting down")
)
