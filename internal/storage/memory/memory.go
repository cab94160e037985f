// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/OCAP2/fingerprint-editor/internal/storage"
	"github.com/OCAP2/fingerprint-editor/pkg/core"
)

// Backend keeps capture locations in process memory. Used for offline
// sessions and tests; nothing survives a restart.
type Backend struct {
	mu     sync.RWMutex
	floors map[int][]core.Location
}

// New creates a new memory backend seeded with the given locations.
func New(seed ...core.Location) *Backend {
	b := &Backend{floors: make(map[int][]core.Location)}
	for _, loc := range seed {
		b.floors[loc.Floor] = append(b.floors[loc.Floor], loc)
	}
	return b
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// InsertLocation stores a location; names are unique per floor.
func (b *Backend) InsertLocation(ctx context.Context, loc core.Location) error {
	if err := ctx.Err(); err != nil {
		return storage.Wrap("insert location", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.floors[loc.Floor] {
		if existing.Name == loc.Name {
			return storage.Wrap("insert location", fmt.Errorf("location %q already stored on floor %d", loc.Name, loc.Floor))
		}
	}
	b.floors[loc.Floor] = append(b.floors[loc.Floor], loc)
	return nil
}

// QueryLocations returns the floor's locations in insertion order.
func (b *Backend) QueryLocations(ctx context.Context, floor int) ([]core.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.Wrap("query locations", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]core.Location(nil), b.floors[floor]...), nil
}

// Len returns the total number of stored locations.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, locs := range b.floors {
		n += len(locs)
	}
	return n
}
