package divergence

const DefaultWindow = 50

type Config struct {
	// Window is the number of most recent commits examined per branch.
	Window int
	// DiffContext is the number of context lines in file comparisons.
	DiffContext int
}
