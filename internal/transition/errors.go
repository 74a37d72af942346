package transition

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPendingChanges = errors.New("uncommitted changes require a decision")
	ErrStashFailed    = errors.New("auto-stash failed")
	ErrWouldOverwrite = errors.New("local changes would be overwritten")
	ErrBranchNotFound = errors.New("branch not found")
	ErrSwitchFailed   = errors.New("branch switch failed")
)

// Kind classifies a failed switch.
type Kind string

const (
	KindPendingChanges Kind = "pending_changes"
	KindStashFailed    Kind = "stash_failed"
	KindWouldOverwrite Kind = "would_overwrite"
	KindBranchNotFound Kind = "branch_not_found"
	KindUnknown        Kind = "unknown"
)

func (k Kind) sentinel() error {
	switch k {
	case KindPendingChanges:
		return ErrPendingChanges
	case KindStashFailed:
		return ErrStashFailed
	case KindWouldOverwrite:
		return ErrWouldOverwrite
	case KindBranchNotFound:
		return ErrBranchNotFound
	case KindUnknown:
		return ErrSwitchFailed
	}
	return ErrSwitchFailed
}

// SwitchError reports why SafeSwitch did not move to the target branch.
// The collaborator's text is preserved in Reason.
type SwitchError struct {
	Kind   Kind
	Reason string

	Origin string
	Target string

	HadPendingChanges bool
	Pending           []string
	// Stashed is set when an auto-stash was taken before the switch failed.
	Stashed bool

	Err error
}

func (e *SwitchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: switching from %q to %q", e.Kind.sentinel(), e.Origin, e.Target)
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Stashed {
		b.WriteString(" (local changes were stashed)")
	}
	return b.String()
}

func (e *SwitchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

var notFoundHints = []string{
	"did not match any",
	"does not exist",
	"invalid reference",
	"not a valid",
	"unknown revision",
}

// Classify maps collaborator failure text onto a Kind. The match is a
// best-effort hint; callers should always show the original text.
func Classify(text string) Kind {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "would be overwritten") {
		return KindWouldOverwrite
	}
	for _, hint := range notFoundHints {
		if strings.Contains(lower, hint) {
			return KindBranchNotFound
		}
	}
	return KindUnknown
}
