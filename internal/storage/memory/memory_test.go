package memory

import (
	"context"
	"testing"

	"github.com/OCAP2/fingerprint-editor/internal/storage"
	"github.com/OCAP2/fingerprint-editor/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func TestNew_Seeded(t *testing.T) {
	b := New(
		core.Location{Name: "AP1", Floor: 1, Position: core.Position2D{X: 10, Y: 20}},
		core.Location{Name: "B1", Floor: 2},
	)
	require.NoError(t, b.Init())
	defer func() { require.NoError(t, b.Close()) }()

	locs, err := b.QueryLocations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "AP1", locs[0].Name)
	assert.Equal(t, 2, b.Len())
}

func TestInsertLocation(t *testing.T) {
	b := New()
	ctx := context.Background()

	require.NoError(t, b.InsertLocation(ctx, core.Location{Name: "A", Floor: 3, Position: core.Position2D{X: 1, Y: 2}}))
	require.NoError(t, b.InsertLocation(ctx, core.Location{Name: "B", Floor: 3}))
	require.NoError(t, b.InsertLocation(ctx, core.Location{Name: "A", Floor: 1}), "same name on another floor is fine")

	locs, err := b.QueryLocations(ctx, 3)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "A", locs[0].Name)
	assert.Equal(t, "B", locs[1].Name)
}

func TestInsertLocation_DuplicateOnFloor(t *testing.T) {
	b := New(core.Location{Name: "A", Floor: 1})

	err := b.InsertLocation(context.Background(), core.Location{Name: "A", Floor: 1})
	assert.ErrorIs(t, err, storage.ErrStorage)
	assert.Equal(t, 1, b.Len())
}

func TestQueryLocations_EmptyFloor(t *testing.T) {
	b := New()

	locs, err := b.QueryLocations(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestQueryLocations_ReturnsCopy(t *testing.T) {
	b := New(core.Location{Name: "A", Floor: 1})

	locs, err := b.QueryLocations(context.Background(), 1)
	require.NoError(t, err)
	locs[0].Name = "CHANGED"

	again, err := b.QueryLocations(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Name)
}

func TestCanceledContext(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.InsertLocation(ctx, core.Location{Name: "A", Floor: 1}), storage.ErrStorage)
	_, err := b.QueryLocations(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, b.Len())
}
