// internal/storage/storage_test.go
package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OCAP2/fingerprint-editor/internal/storage"
	"github.com/OCAP2/fingerprint-editor/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowBackend sleeps for delay on every call. With honorCtx set it gives up
// as soon as the context is done; otherwise it ignores the context.
type slowBackend struct {
	delay    time.Duration
	honorCtx bool
	err      error
	locs     []core.Location
	stored   []core.Location
}

func (b *slowBackend) Init() error  { return nil }
func (b *slowBackend) Close() error { return nil }

func (b *slowBackend) InsertLocation(ctx context.Context, loc core.Location) error {
	if b.honorCtx {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	} else {
		time.Sleep(b.delay)
	}
	if b.err != nil {
		return b.err
	}
	b.stored = append(b.stored, loc)
	return nil
}

func (b *slowBackend) QueryLocations(ctx context.Context, floor int) ([]core.Location, error) {
	time.Sleep(b.delay)
	return b.locs, b.err
}

func TestWrap(t *testing.T) {
	assert.NoError(t, storage.Wrap("insert", nil))

	cause := errors.New("disk full")
	err := storage.Wrap("insert", cause)
	assert.ErrorIs(t, err, storage.ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert")

	again := storage.Wrap("outer", err)
	assert.Equal(t, err, again, "already-wrapped errors are not wrapped twice")
}

func TestWithTimeout_ZeroReturnsSameBackend(t *testing.T) {
	b := &slowBackend{}
	assert.Same(t, storage.Backend(b), storage.WithTimeout(b, 0))
}

func TestWithTimeout_InsertExpires(t *testing.T) {
	inner := &slowBackend{delay: 200 * time.Millisecond, honorCtx: true}
	b := storage.WithTimeout(inner, 10*time.Millisecond)

	start := time.Now()
	err := b.InsertLocation(context.Background(), core.Location{Name: "A", Floor: 1})

	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStorage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
	assert.Empty(t, inner.stored)
}

func TestWithTimeout_LateInsertReportsStored(t *testing.T) {
	inner := &slowBackend{delay: 50 * time.Millisecond}
	b := storage.WithTimeout(inner, 10*time.Millisecond)

	err := b.InsertLocation(context.Background(), core.Location{Name: "LOBBY", Floor: 1})

	require.NoError(t, err, "a write that landed must not be reported as failed")
	assert.Len(t, inner.stored, 1)
}

func TestWithTimeout_QueryExpires(t *testing.T) {
	b := storage.WithTimeout(&slowBackend{delay: 200 * time.Millisecond}, 10*time.Millisecond)

	locs, err := b.QueryLocations(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrStorage)
	assert.Nil(t, locs)
}

func TestWithTimeout_PassesThroughResults(t *testing.T) {
	want := []core.Location{{Name: "AP1", Floor: 1, Position: core.Position2D{X: 10, Y: 20}}}
	b := storage.WithTimeout(&slowBackend{locs: want}, time.Second)

	require.NoError(t, b.InsertLocation(context.Background(), want[0]))
	got, err := b.QueryLocations(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWithTimeout_WrapsBackendError(t *testing.T) {
	cause := errors.New("constraint failed")
	b := storage.WithTimeout(&slowBackend{err: cause}, time.Second)

	err := b.InsertLocation(context.Background(), core.Location{})
	assert.ErrorIs(t, err, storage.ErrStorage)
	assert.ErrorIs(t, err, cause)
}

func TestWithTimeout_BackupUnsupported(t *testing.T) {
	b := storage.WithTimeout(&slowBackend{}, time.Second)

	bk, ok := b.(storage.Backupable)
	require.True(t, ok)
	assert.ErrorIs(t, bk.Backup("/tmp/x.db"), storage.ErrStorage)
}
