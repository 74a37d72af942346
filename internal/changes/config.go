package changes

// DefaultIgnoredDirs are skipped unless configuration says otherwise.
var DefaultIgnoredDirs = []string{
	".git",
	"node_modules",
	"venv",
	"env",
	".venv",
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
	"dist",
	"build",
	".next",
	".nuxt",
	"target",
	"vendor",
	".idea",
	".vscode",
}

type Config struct {
	// IgnoredDirs lists directory names; a path with any segment in the set
	// is left out of every group.
	IgnoredDirs []string
}
