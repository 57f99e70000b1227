package address

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu        sync.RWMutex
	addresses map[string]Address
}

// NewMemoryRepository builds an in-memory address store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{addresses: make(map[string]Address)}
}

func (r *memoryRepository) Create(_ context.Context, a Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addresses[a.ID] = a
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.addresses[id]
	if !ok {
		return Address{}, ErrNotFound
	}
	return a, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addresses := make([]Address, 0, len(r.addresses))
	for _, a := range r.addresses {
		addresses = append(addresses, a)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i].Name < addresses[j].Name })
	return addresses, nil
}

func (r *memoryRepository) Update(_ context.Context, a Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.addresses[a.ID]; !ok {
		return ErrNotFound
	}
	r.addresses[a.ID] = a
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.addresses[id]; !ok {
		return ErrNotFound
	}
	delete(r.addresses, id)
	return nil
}
