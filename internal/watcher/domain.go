package watcher

import "context"

// State is what the watcher last observed in the repository.
type State struct {
	Branch          string
	Detached        bool
	MergeInProgress bool
}

// Probe answers the two questions the watcher asks after each burst of
// filesystem events.
type Probe interface {
	CurrentBranch(ctx context.Context) (string, error)
	HasMergeMarker(ctx context.Context) (bool, error)
	GitDir(ctx context.Context) (string, error)
}
