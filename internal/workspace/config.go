package workspace

type Config struct {
	// InitIfMissing creates the repository on startup when it does not exist.
	InitIfMissing bool
	// IgnoreTemplate is written to .gitignore by Init when none exists.
	IgnoreTemplate string
}
