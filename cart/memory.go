package cart

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is an in-process Store useful for tests, examples and offline
// runs. Products are copied on the way in and out.
type MemoryStore struct {
	mu       sync.RWMutex
	products []Product
}

// NewMemoryStore returns a store seeded with products.
func NewMemoryStore(products ...Product) *MemoryStore {
	return &MemoryStore{products: slices.Clone(products)}
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// Add implements Store.
func (s *MemoryStore) Add(_ context.Context, p NewProduct) (Product, error) {
	p, err := p.Validate()
	if err != nil {
		return Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	added := Product{ID: NextID(s.products), Name: p.Name, URL: p.URL}
	s.products = append(s.products, added)
	return added, nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(_ context.Context, id string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.products, id)
	if i < 0 {
		return nil, nil
	}
	removed := s.products[i]
	s.products = slices.Delete(s.products, i, i+1)
	return &removed, nil
}
