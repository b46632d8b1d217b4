package storage

import "errors"

var ErrDisabled = errors.New("storage disabled")

// Config configures the send-record store.
//
// Driver values:
//   - "file": single JSON file (default)
//   - "sqlite": SQLite database file (optional build tag)
type Config struct {
	Driver string
	Path   string
}
