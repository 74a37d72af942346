package git

import "time"

type Config struct {
	// Path of the working tree the service operates on.
	Path string
	// Binary is the git executable used for mutating commands.
	Binary string
	// Timeout bounds read-only git commands; zero disables the bound.
	// Mutating commands always run to completion.
	Timeout time.Duration
	// MergeMessage, when set, is the merge commit message; %s is replaced
	// with the merged branch.
	MergeMessage string
}

func (c Config) binary() string {
	if c.Binary == "" {
		return "git"
	}
	return c.Binary
}
