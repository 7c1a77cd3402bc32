package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const schemaProducts = `
	CREATE TABLE IF NOT EXISTS products (
		seq  INTEGER PRIMARY KEY AUTOINCREMENT,
		id   TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		url  TEXT NOT NULL
	)
`

// SQLStore keeps the cart in an SQLite table. Insertion order is the
// autoincrement sequence; ids follow the same smallest-free policy as the
// other stores.
type SQLStore struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// OpenSQLStore opens (or creates) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func OpenSQLStore(path string) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schemaProducts); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create products table: %w", err)
	}

	return &SQLStore{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *SQLStore) Path() string { return s.path }

// List implements Store.
func (s *SQLStore) List(ctx context.Context) ([]Product, error) {
	return listProducts(ctx, s.conn)
}

// Add implements Store.
func (s *SQLStore) Add(ctx context.Context, p NewProduct) (Product, error) {
	p, err := p.Validate()
	if err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return Product{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	products, err := listProducts(ctx, tx)
	if err != nil {
		return Product{}, err
	}

	added := Product{ID: NextID(products), Name: p.Name, URL: p.URL}
	if _, err := tx.ExecContext(ctx, "INSERT INTO products (id, name, url) VALUES (?, ?, ?)", added.ID, added.Name, added.URL); err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Product{}, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

// Remove implements Store.
func (s *SQLStore) Remove(ctx context.Context, id string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var removed Product
	row := tx.QueryRowContext(ctx, "SELECT id, name, url FROM products WHERE id = ?", id)
	if err := row.Scan(&removed.ID, &removed.Name, &removed.URL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("delete product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &removed, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listProducts(ctx context.Context, q queryer) ([]Product, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, name, url FROM products ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.URL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
