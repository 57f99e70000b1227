package product

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	products map[string]Product // keyed by id
	slugs    map[string]string  // slug -> id
}

// NewMemoryRepository builds an in-memory catalog for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{products: make(map[string]Product), slugs: make(map[string]string)}
}

func (r *memoryRepository) Create(_ context.Context, p Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.slugs[p.Slug]; exists {
		return ErrSlugTaken
	}
	r.products[p.ID] = p
	r.slugs[p.Slug] = p.ID
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	products := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r *memoryRepository) Update(_ context.Context, p Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	if p.Slug != existing.Slug {
		if _, exists := r.slugs[p.Slug]; exists {
			return ErrSlugTaken
		}
		delete(r.slugs, existing.Slug)
		r.slugs[p.Slug] = p.ID
	}
	r.products[p.ID] = p
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.slugs, p.Slug)
	delete(r.products, id)
	return nil
}
