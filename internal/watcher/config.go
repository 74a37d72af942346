package watcher

import "time"

type Config struct {
	Enabled  bool
	Debounce time.Duration
}
