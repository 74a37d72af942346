package common

import (
	"time"

	"github.com/branchguard/branchguard/internal/tasks"
	"github.com/google/uuid"
)

// TaskResponse is returned by every endpoint that accepts async=true.
type TaskResponse struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	Status     tasks.Status `json:"status"`
	Result     any          `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}

func NewTaskResponse(task tasks.Task) TaskResponse {
	return TaskResponse{
		ID:         task.ID,
		Name:       task.Name,
		Status:     task.Status,
		Result:     task.Result,
		Error:      task.Error,
		CreatedAt:  task.CreatedAt,
		StartedAt:  task.StartedAt,
		FinishedAt: task.FinishedAt,
	}
}
