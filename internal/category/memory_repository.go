package category

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu         sync.RWMutex
	categories map[string]Category // keyed by id
	slugs      map[string]string   // slug -> id
}

// NewMemoryRepository builds an in-memory category store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{categories: make(map[string]Category), slugs: make(map[string]string)}
}

func (r *memoryRepository) Create(_ context.Context, cat Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.slugs[cat.Slug]; exists {
		return ErrSlugTaken
	}
	r.categories[cat.ID] = cat
	r.slugs[cat.Slug] = cat.ID
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cat, ok := r.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return cat, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cats := make([]Category, 0, len(r.categories))
	for _, cat := range r.categories {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (r *memoryRepository) Update(_ context.Context, cat Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.categories[cat.ID]
	if !ok {
		return ErrNotFound
	}
	if cat.Slug != existing.Slug {
		if _, exists := r.slugs[cat.Slug]; exists {
			return ErrSlugTaken
		}
		delete(r.slugs, existing.Slug)
		r.slugs[cat.Slug] = cat.ID
	}
	r.categories[cat.ID] = cat
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat, ok := r.categories[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.slugs, cat.Slug)
	delete(r.categories, id)
	return nil
}
