package tasks

import "time"

type Config struct {
	// Retention is how long finished tasks stay queryable.
	Retention time.Duration
}
