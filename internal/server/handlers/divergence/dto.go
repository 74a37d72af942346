package divergence

type DivergenceQuery struct {
	BranchA string `query:"a"      validate:"required,min=1,max=255"`
	BranchB string `query:"b"      validate:"required,min=1,max=255"`
	Window  int    `query:"window" validate:"min=0,max=10000"`
}

type FeasibilityQuery struct {
	Source string `query:"source" validate:"required,min=1,max=255"`
}

type FeasibilityResponse struct {
	Current       string `json:"current"`
	Source        string `json:"source"`
	IsFastForward bool   `json:"is_fast_forward"`
	CommitsAhead  int    `json:"commits_ahead"`
	CommitsBehind int    `json:"commits_behind"`
	RequiresMerge bool   `json:"requires_merge"`
}

type CompareQuery struct {
	Path    string `query:"path" validate:"required,min=1,max=4096"`
	BranchA string `query:"a"    validate:"required,min=1,max=255"`
	BranchB string `query:"b"    validate:"required,min=1,max=255"`
}

type FileVersion struct {
	Branch  string `json:"branch"`
	Present bool   `json:"present"`
	Content string `json:"content"`
}

type CompareResponse struct {
	Path      string      `json:"path"`
	A         FileVersion `json:"a"`
	B         FileVersion `json:"b"`
	Identical bool        `json:"identical"`
	Diff      string      `json:"diff"`
}
