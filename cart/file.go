package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the cart as a JSON array in a single file. A missing file
// is an empty cart. Writes go to a temporary file that is renamed over the
// original so readers never observe a partial document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The parent directory is
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add implements Store.
func (s *FileStore) Add(ctx context.Context, p NewProduct) (Product, error) {
	p, err := p.Validate()
	if err != nil {
		return Product{}, err
	}
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return Product{}, err
	}

	added := Product{ID: NextID(products), Name: p.Name, URL: p.URL}
	if err := s.save(append(products, added)); err != nil {
		return Product{}, err
	}
	return added, nil
}

// Remove implements Store.
func (s *FileStore) Remove(ctx context.Context, id string) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return nil, err
	}

	i := indexOf(products, id)
	if i < 0 {
		return nil, nil
	}

	removed := products[i]
	if err := s.save(append(products[:i], products[i+1:]...)); err != nil {
		return nil, err
	}
	return &removed, nil
}

func (s *FileStore) load() ([]Product, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	products := []Product{}
	if len(data) == 0 {
		return products, nil
	}
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", s.path, err)
	}
	return products, nil
}

func (s *FileStore) save(products []Product) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cart directory: %w", err)
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	tmpPath := s.path + ".tmp"
	//nolint:gosec // G306: the cart is not secret
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("commit cart: %w", err)
	}
	return nil
}
