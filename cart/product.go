package cart

import (
	"encoding/json"
	"errors"
	"strings"
)

// Product is one cart entry.
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// NewProduct is a product before an id is allocated.
type NewProduct struct {
	Name string `json:"name" description:"Product name"`
	URL  string `json:"url" description:"Product page URL"`
}

// ErrInvalidProduct is returned by stores for products without name or URL.
var ErrInvalidProduct = errors.New("product must have a name and a url")

// Validate trims the fields and checks both are present.
func (p NewProduct) Validate() (NewProduct, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.URL = strings.TrimSpace(p.URL)
	if p.Name == "" || p.URL == "" {
		return p, ErrInvalidProduct
	}
	return p, nil
}

// Render formats products the way the cart actions report them: a pretty
// printed JSON array, "[]" when empty.
func Render(products []Product) string {
	if products == nil {
		products = []Product{}
	}
	b, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}
