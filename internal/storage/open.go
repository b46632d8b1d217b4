package storage

import (
	"context"
	"errors"
	"strings"

	logx "fairybot/pkg/logx"
)

// Store is the minimal persistence API used by the send gate.
//
// Dates are fixed-width YYYYMMDD integers; conversion from looser on-disk
// forms happens inside the drivers, at the I/O edge only.
type Store interface {
	// LastSent returns the date of the last delivered announcement.
	// ok is false when no record exists yet.
	LastSent(ctx context.Context) (date int, ok bool, err error)
	// SetLastSent overwrites the record. Called only after a confirmed
	// delivery.
	SetLastSent(ctx context.Context, date int) error
	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown record driver: " + driver)
	}
}
