package badgerfx

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// SeekEnd is appended to a prefix to start a reverse iteration after every
// key sharing it.
const SeekEnd = byte(0xFF)

func New(config Config, logger badger.Logger) (*badger.DB, error) {
	opts := config.Build().
		WithLogger(logger)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	return db, nil
}
