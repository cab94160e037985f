package storage

import (
	"context"
	"time"

	"github.com/OCAP2/fingerprint-editor/pkg/core"
)

// WithTimeout bounds every call to the wrapped backend with a context
// deadline. Calls run on the caller's goroutine, so whatever the backend
// reports is what happened: an insert that finishes after the deadline but
// succeeds is reported as stored.
func WithTimeout(b Backend, d time.Duration) Backend {
	if d <= 0 {
		return b
	}
	return &timeoutBackend{Backend: b, timeout: d}
}

type timeoutBackend struct {
	Backend
	timeout time.Duration
}

// Backup forwards to the wrapped backend when it supports snapshots.
func (t *timeoutBackend) Backup(path string) error {
	if b, ok := t.Backend.(Backupable); ok {
		return b.Backup(path)
	}
	return Wrap("backup", errBackupUnsupported)
}

func (t *timeoutBackend) InsertLocation(ctx context.Context, loc core.Location) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return Wrap("insert location", t.Backend.InsertLocation(ctx, loc))
}

// QueryLocations has no side effects, so a result that arrives after the
// deadline is dropped.
func (t *timeoutBackend) QueryLocations(ctx context.Context, floor int) ([]core.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	locs, err := t.Backend.QueryLocations(ctx, floor)
	if err != nil {
		return nil, Wrap("query locations", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, Wrap("query locations", err)
	}
	return locs, nil
}
