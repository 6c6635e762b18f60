// Package store provides the persistence boundary for the product collection.
package store

import "context"

// ProductStore is an interface for whole-collection persistence.
// It abstracts the underlying medium, allowing for different implementations (e.g., a file, a test double).
type ProductStore interface {
	// Load returns the persisted collection in its stored order.
	// Returns an empty slice if nothing usable is stored; it never fails.
	Load(ctx context.Context) []Product

	// Save replaces the persisted collection with products.
	// Returns an error wrapping ErrPersist if the collection cannot be written.
	Save(ctx context.Context, products []Product) error
}

// Product represents a single inventory record as it is persisted.
type Product struct {
	ProductType  string  `json:"product_type"`
	Quantity     uint64  `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
	SalesTax     float64 `json:"sales_tax"`
	TotalPrice   float64 `json:"total_price"`
}
