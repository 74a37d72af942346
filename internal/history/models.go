package history

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	prefix = "history:"

	prefixByID        = prefix + "id:"
	prefixByOperation = prefix + "op:"
)

type entryModel struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Operation  Operation `json:"operation"`
	Repository string    `json:"repository"`

	Origin string `json:"origin,omitempty"`
	Target string `json:"target,omitempty"`
	Branch string `json:"branch,omitempty"`

	StashIndex *int   `json:"stash_index,omitempty"`
	Path       string `json:"path,omitempty"`

	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}

func newEntryModel(draft EntryDraft) *entryModel {
	return &entryModel{
		// v7 IDs sort by creation time, so key order is chronological.
		ID:        uuid.Must(uuid.NewV7()),
		CreatedAt: time.Now(),

		Operation:  draft.Operation,
		Repository: draft.Repository,
		Origin:     draft.Origin,
		Target:     draft.Target,
		Branch:     draft.Branch,
		StashIndex: draft.StashIndex,
		Path:       draft.Path,
		Outcome:    draft.Outcome,
		Detail:     draft.Detail,
	}
}

func newEntry(model *entryModel) Entry {
	return Entry{
		EntryDraft: EntryDraft{
			Operation:  model.Operation,
			Repository: model.Repository,
			Origin:     model.Origin,
			Target:     model.Target,
			Branch:     model.Branch,
			StashIndex: model.StashIndex,
			Path:       model.Path,
			Outcome:    model.Outcome,
			Detail:     model.Detail,
		},
		ID:        model.ID,
		CreatedAt: model.CreatedAt,
	}
}

func idKey(id uuid.UUID) string {
	return prefixByID + id.String()
}

func operationPrefix(op Operation) string {
	return prefixByOperation + string(op) + ":"
}

func (m *entryModel) StorageKey() string {
	return idKey(m.ID)
}

func (m *entryModel) StorageIndexes() []string {
	return []string{operationPrefix(m.Operation) + m.ID.String()}
}

func (m *entryModel) MarshalStorage() ([]byte, error) {
	return json.Marshal(m)
}

func (m *entryModel) UnmarshalStorage(data []byte) error {
	return json.Unmarshal(data, m)
}
