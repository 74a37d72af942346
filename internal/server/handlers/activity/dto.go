package activity

import (
	"time"

	"github.com/branchguard/branchguard/internal/history"
	"github.com/google/uuid"
)

type HistoryQuery struct {
	Operation history.Operation `query:"operation" validate:"omitempty,max=64"`
	Limit     int               `query:"limit"     validate:"min=0,max=500"`
}

type EntryResponse struct {
	ID         uuid.UUID         `json:"id"`
	Operation  history.Operation `json:"operation"`
	Repository string            `json:"repository"`
	Origin     string            `json:"origin,omitempty"`
	Target     string            `json:"target,omitempty"`
	Branch     string            `json:"branch,omitempty"`
	StashIndex *int              `json:"stash_index,omitempty"`
	Path       string            `json:"path,omitempty"`
	Outcome    history.Outcome   `json:"outcome"`
	Detail     string            `json:"detail,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func newEntryResponse(entry history.Entry) EntryResponse {
	return EntryResponse{
		ID:         entry.ID,
		Operation:  entry.Operation,
		Repository: entry.Repository,
		Origin:     entry.Origin,
		Target:     entry.Target,
		Branch:     entry.Branch,
		StashIndex: entry.StashIndex,
		Path:       entry.Path,
		Outcome:    entry.Outcome,
		Detail:     entry.Detail,
		CreatedAt:  entry.CreatedAt,
	}
}
