package cart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextID(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{name: "empty", ids: nil, want: "1"},
		{name: "gap", ids: []string{"1", "3"}, want: "2"},
		{name: "dense", ids: []string{"2", "1", "3"}, want: "4"},
		{name: "starts above one", ids: []string{"2"}, want: "1"},
		{name: "non numeric ignored", ids: []string{"abc", "1", "-4", "0"}, want: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := make([]Product, len(tt.ids))
			for i, id := range tt.ids {
				products[i] = Product{ID: id}
			}
			assert.Equal(t, tt.want, NextID(products))
		})
	}
}

type storeFactory func(t *testing.T) Store

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"file": func(t *testing.T) Store {
			return NewFileStore(filepath.Join(t.TempDir(), "data", "cart.json"))
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLStore(filepath.Join(t.TempDir(), "cart.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
	}
}

func TestStores_Contract(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)

			products, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, products)

			lamp, err := s.Add(ctx, NewProduct{Name: "Lamp", URL: "https://shop.test/lamp"})
			require.NoError(t, err)
			assert.Equal(t, Product{ID: "1", Name: "Lamp", URL: "https://shop.test/lamp"}, lamp)

			chair, err := s.Add(ctx, NewProduct{Name: " Chair ", URL: "https://shop.test/chair"})
			require.NoError(t, err)
			assert.Equal(t, "2", chair.ID)
			assert.Equal(t, "Chair", chair.Name)

			_, err = s.Add(ctx, NewProduct{Name: "Desk"})
			assert.ErrorIs(t, err, ErrInvalidProduct)

			removed, err := s.Remove(ctx, "1")
			require.NoError(t, err)
			require.NotNil(t, removed)
			assert.Equal(t, "Lamp", removed.Name)

			missing, err := s.Remove(ctx, "42")
			require.NoError(t, err)
			assert.Nil(t, missing)

			table, err := s.Add(ctx, NewProduct{Name: "Table", URL: "https://shop.test/table"})
			require.NoError(t, err)
			assert.Equal(t, "1", table.ID, "freed ids are reused")

			products, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"Chair", "Table"}, names(products), "insertion order")
		})
	}
}

func TestStores_ConcurrentAdds(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)

			const n = 20
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := s.Add(ctx, NewProduct{Name: fmt.Sprintf("item-%d", i), URL: "https://shop.test"})
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			products, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, products, n)

			ids := map[string]bool{}
			for _, p := range products {
				assert.False(t, ids[p.ID], "duplicate id %s", p.ID)
				ids[p.ID] = true
			}
			assert.Equal(t, fmt.Sprint(n+1), NextID(products))
		})
	}
}

func TestFileStore_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	s := NewFileStore(path)
	ctx := context.Background()

	_, err := s.Add(ctx, NewProduct{Name: "Lamp", URL: "https://shop.test/lamp"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"id\": \"1\",\n    \"name\": \"Lamp\",\n    \"url\": \"https://shop.test/lamp\"\n  }\n]", string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")

	// A second store over the same file sees the persisted state.
	products, err := NewFileStore(path).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lamp"}, names(products))
}

func TestFileStore_RemoveMissingLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"7","name":"Rug","url":"u"}]`), 0o644))

	s := NewFileStore(path)
	removed, err := s.Remove(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, removed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"7","name":"Rug","url":"u"}]`, string(data))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).List(context.Background())
	assert.Error(t, err)
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewFileStore(filepath.Join(t.TempDir(), "cart.json"))
	_, err := s.Add(ctx, NewProduct{Name: "Lamp", URL: "u"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "[]", Render(nil))
	assert.Equal(t, "[\n  {\n    \"id\": \"1\",\n    \"name\": \"a\",\n    \"url\": \"b\"\n  }\n]", Render([]Product{{ID: "1", Name: "a", URL: "b"}}))
}

func names(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}
