package divergence

import (
	"context"
	"time"

	"github.com/branchguard/branchguard/internal/git"
)

type Kind string

const (
	KindBothChanged Kind = "both_changed"
	KindOnlyInOne   Kind = "only_in_one"
)

// Side names one of the two compared branches.
type Side string

const (
	SideA     Side = "a"
	SideB     Side = "b"
	SideEqual Side = "equal"
)

// FileTouch is the most recent commit of a branch that changed a file.
type FileTouch struct {
	Hash      string
	ShortHash string
	When      time.Time
	Author    string
	Message   string
}

// Record describes how one file diverges. A nil side means the file was
// not touched on that branch within the window.
type Record struct {
	Path string
	Kind Kind

	A *FileTouch
	B *FileTouch

	// MoreRecent is set for KindBothChanged; ties report SideEqual.
	MoreRecent Side
	// OnlyIn is set for KindOnlyInOne.
	OnlyIn Side
	// Gap is the absolute time between both touches.
	Gap time.Duration
}

type Report struct {
	BranchA string
	BranchB string
	Window  int
	Files   map[string]Record
}

// Feasibility estimates how a merge of a source branch into the current
// branch would go.
type Feasibility struct {
	Current       string
	Source        string
	IsFastForward bool
	CommitsAhead  int // commits on source missing from current
	CommitsBehind int // commits on current missing from source
	RequiresMerge bool
}

// FileVersion is the content of a file on one branch.
type FileVersion struct {
	Branch  string
	Present bool
	Content string
}

type FileComparison struct {
	Path      string
	A         FileVersion
	B         FileVersion
	Identical bool
	Diff      string // unified diff from A to B
}

// History is the subset of the git collaborator the analyzer reads.
type History interface {
	CurrentBranch(ctx context.Context) (string, error)
	IterCommits(ctx context.Context, ref string, maxCount int, path string) ([]git.Commit, error)
	IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error)
	CountCommits(ctx context.Context, rangeSpec string) (int, error)
	ShowFileAtRef(ctx context.Context, path, ref string) (string, error)
}
