package booking

import (
	"context"
	"errors"
	"sync"
)

var ErrSlotOccupied = errors.New("slot already occupied")

// Registry is the authoritative record of which slot keys are reserved.
// Reserve must be an atomic test-and-set: two concurrent calls for the
// same key may never both succeed.
type Registry interface {
	IsOccupied(ctx context.Context, key SlotKey) (bool, error)
	Reserve(ctx context.Context, key SlotKey) error
	Release(ctx context.Context, key SlotKey) error
}

type memoryRegistry struct {
	mu       sync.Mutex
	occupied map[string]struct{}
}

// NewMemoryRegistry returns an in-process registry. Contents are lost on
// restart; use the Redis registry to share occupancy between instances.
func NewMemoryRegistry() Registry {
	return &memoryRegistry{occupied: make(map[string]struct{})}
}

func (r *memoryRegistry) IsOccupied(_ context.Context, key SlotKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.occupied[key.String()]
	return ok, nil
}

func (r *memoryRegistry) Reserve(_ context.Context, key SlotKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key.String()
	if _, ok := r.occupied[k]; ok {
		return ErrSlotOccupied
	}
	r.occupied[k] = struct{}{}
	return nil
}

func (r *memoryRegistry) Release(_ context.Context, key SlotKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.occupied, key.String())
	return nil
}
