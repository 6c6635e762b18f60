// Package service provides the implementation of inventory business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	perrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/store"
)

// SalesTaxRate is applied to the unit price of every product on creation.
const SalesTaxRate = 0.10

// InventoryService defines the commands available to a presentation layer.
type InventoryService interface {
	// Add validates the raw form input, appends a new product and persists the collection.
	// Returns ErrEmptyField, ErrInvalidQuantity or ErrInvalidPrice for the first invalid field.
	// If persisting fails, the product is kept in memory and returned alongside an error wrapping ErrPersist.
	Add(ctx context.Context, productType, quantity, pricePerUnit string) (*ProductDto, error)

	// List returns a snapshot of the collection with 1-based positions.
	// Returns an empty slice if no products exist.
	List(ctx context.Context) []Entry

	// Delete removes the product at the given 1-based position and persists the collection.
	// Returns ErrEmptyField for empty input and ErrOutOfRange for a position outside the collection.
	Delete(ctx context.Context, position string) error
}

// ProductDto represents a product handed out to callers.
type ProductDto struct {
	ProductType  string  `json:"product_type"`
	Quantity     uint64  `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
	SalesTax     float64 `json:"sales_tax"`
	TotalPrice   float64 `json:"total_price"`
}

// Entry pairs a product with its current position.
type Entry struct {
	Position int
	Product  ProductDto
}

// productForm holds parsed user input. Fields are declared in validation order.
type productForm struct {
	ProductType  string  `validate:"required"`
	Quantity     uint64  `validate:"gt=0"`
	PricePerUnit float64 `validate:"gt=0"`
}

// formErrors maps a failing productForm field to its sentinel error.
var formErrors = map[string]error{
	"ProductType":  perrors.ErrEmptyField,
	"Quantity":     perrors.ErrInvalidQuantity,
	"PricePerUnit": perrors.ErrInvalidPrice,
}

// Inventory implements InventoryService. It owns the collection and guards it with a single mutex,
// so reads never observe a half-applied mutation and two mutations never interleave.
type Inventory struct {
	mu       sync.Mutex
	products []store.Product
	store    store.ProductStore
	validate *validator.Validate
	logger   *slog.Logger
}

var _ InventoryService = (*Inventory)(nil)

// NewInventory loads the persisted collection from repo and returns the store that owns it.
func NewInventory(ctx context.Context, repo store.ProductStore, logger *slog.Logger) *Inventory {
	logger = logger.With("component", "inventory")
	products := repo.Load(ctx)
	logger.InfoContext(ctx, "Inventory loaded", "count", len(products))
	return &Inventory{
		products: products,
		store:    repo,
		validate: validator.New(),
		logger:   logger,
	}
}

// Add creates a product from raw text input.
func (s *Inventory) Add(ctx context.Context, productType, quantity, pricePerUnit string) (*ProductDto, error) {
	form := productForm{
		ProductType:  strings.TrimSpace(productType),
		Quantity:     parseQuantity(quantity),
		PricePerUnit: parsePrice(pricePerUnit),
	}
	if err := s.validateForm(form); err != nil {
		s.logger.WarnContext(ctx, "Rejected product", "product_type", form.ProductType, "error", err)
		return nil, err
	}

	salesTax := SalesTaxRate * form.PricePerUnit
	product := store.Product{
		ProductType:  form.ProductType,
		Quantity:     form.Quantity,
		PricePerUnit: form.PricePerUnit,
		SalesTax:     salesTax,
		TotalPrice:   float64(form.Quantity)*form.PricePerUnit + salesTax,
	}
	// a non-finite total cannot be encoded and would block every later save
	if !isFinite(product.SalesTax) || !isFinite(product.TotalPrice) {
		s.logger.WarnContext(ctx, "Rejected product with overflowing total", "product_type", form.ProductType,
			"quantity", form.Quantity, "price_per_unit", form.PricePerUnit)
		return nil, fmt.Errorf("total price overflows: %w", perrors.ErrInvalidPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, product)
	position := len(s.products)
	if err := s.store.Save(ctx, s.products); err != nil {
		s.logger.ErrorContext(ctx, "Product added but not persisted", "position", position, "error", err)
		return toDto(&product), fmt.Errorf("failed to save product at position %d: %w", position, err)
	}

	s.logger.InfoContext(ctx, "Product added", "position", position, "product_type", product.ProductType,
		"quantity", product.Quantity, "total_price", product.TotalPrice)
	return toDto(&product), nil
}

// List returns all products paired with their positions.
func (s *Inventory) List(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, len(s.products))
	for i := range s.products {
		entries[i] = Entry{Position: i + 1, Product: *toDto(&s.products[i])}
	}
	s.logger.DebugContext(ctx, "Products listed", "count", len(entries))
	return entries
}

// Delete removes the product at position. Input that is not an unsigned integer is ignored.
func (s *Inventory) Delete(ctx context.Context, position string) error {
	if position == "" {
		return fmt.Errorf("position: %w", perrors.ErrEmptyField)
	}
	pos, ok := ParsePosition(position)
	if !ok {
		// unparsable positions are ignored, not rejected
		s.logger.WarnContext(ctx, "Ignoring delete with unparsable position", "position", position)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pos == 0 || pos > uint64(len(s.products)) {
		return fmt.Errorf("position %d of %d: %w", pos, len(s.products), perrors.ErrOutOfRange)
	}
	removed := s.products[pos-1]
	s.products = append(s.products[:pos-1], s.products[pos:]...)
	if err := s.store.Save(ctx, s.products); err != nil {
		s.logger.ErrorContext(ctx, "Product deleted but not persisted", "position", pos, "error", err)
		return fmt.Errorf("failed to save after deleting position %d: %w", pos, err)
	}

	s.logger.InfoContext(ctx, "Product deleted", "position", pos, "product_type", removed.ProductType)
	return nil
}

// Len returns the number of products currently held.
func (s *Inventory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

// validateForm returns the sentinel error of the first invalid field.
func (s *Inventory) validateForm(form productForm) error {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		if sentinel, ok := formErrors[validationErrors[0].StructField()]; ok {
			return sentinel
		}
	}
	return fmt.Errorf("failed to validate product: %w", err)
}

// ParsePosition reports whether raw names a position Delete acts on.
// Delete ignores input for which ok is false and returns nil.
func ParsePosition(raw string) (pos uint64, ok bool) {
	pos, err := parseUnsigned(raw)
	return pos, err == nil
}

// parseQuantity returns 0 for anything that is not an unsigned base-10 integer.
func parseQuantity(raw string) uint64 {
	q, err := parseUnsigned(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return q
}

// parseUnsigned parses a base-10 unsigned integer with at most one leading '+'.
func parseUnsigned(raw string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(raw, "+"), 10, 64)
}

// parsePrice returns 0 for anything that is not a finite number.
func parsePrice(raw string) float64 {
	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !isFinite(p) {
		return 0
	}
	return p
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ProductType:  product.ProductType,
		Quantity:     product.Quantity,
		PricePerUnit: product.PricePerUnit,
		SalesTax:     product.SalesTax,
		TotalPrice:   product.TotalPrice,
	}
}
