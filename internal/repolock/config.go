package repolock

import "time"

type Config struct {
	// Path of the lock file, normally inside the repository's git dir.
	Path string
	// Timeout bounds how long an operation waits for the lock.
	Timeout time.Duration
}
