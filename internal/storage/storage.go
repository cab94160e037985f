// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/OCAP2/fingerprint-editor/pkg/core"
)

// ErrStorage marks every failure that comes from the backing store.
var ErrStorage = errors.New("storage error")

var errBackupUnsupported = errors.New("backend does not support backups")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// InsertLocation persists one capture location.
	InsertLocation(ctx context.Context, loc core.Location) error
	// QueryLocations returns every stored location of a floor.
	QueryLocations(ctx context.Context, floor int) ([]core.Location, error)
}

// Backupable is an optional interface for backends that can snapshot
// themselves to a file.
type Backupable interface {
	Backup(path string) error
}

// Wrap tags err as a storage failure of the named operation.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
