package tasks

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

func (s Status) Finished() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Task is a snapshot of a background operation.
type Task struct {
	ID     uuid.UUID
	Name   string
	Status Status

	Result any
	Error  string

	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}
