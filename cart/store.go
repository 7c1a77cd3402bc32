package cart

import (
	"context"
	"strconv"
)

// Store is the persistent cart.
//
// Implementations must make every read-modify-write a critical section so
// concurrent mutations never lose updates or allocate the same id twice.
type Store interface {
	// List returns the products in insertion order.
	List(ctx context.Context) ([]Product, error)
	// Add allocates an id and appends the product.
	Add(ctx context.Context, p NewProduct) (Product, error)
	// Remove deletes the product with id. It returns (nil, nil) and leaves
	// the cart unchanged when no such product exists.
	Remove(ctx context.Context, id string) (*Product, error)
}

// NextID returns the smallest positive integer, as decimal text, that is not
// used by any product. Non-numeric ids are ignored.
func NextID(existing []Product) string {
	used := make(map[int]struct{}, len(existing))
	for _, p := range existing {
		n, err := strconv.Atoi(p.ID)
		if err != nil || n <= 0 {
			continue
		}
		used[n] = struct{}{}
	}
	for n := 1; ; n++ {
		if _, ok := used[n]; !ok {
			return strconv.Itoa(n)
		}
	}
}

func indexOf(products []Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
