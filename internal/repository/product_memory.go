package repository

import (
	"context"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/product-management/internal/model"
	"github.com/tuanvumaihuynh/product-management/internal/storage/db"
)

var _ ProductRepository = (*InMemoryProductRepository)(nil)

// InMemoryProductRepository is a map-backed ProductRepository for tests.
// It enforces the same sku uniqueness and stock range rules as the postgres table.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]model.Product
}

func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: make(map[uuid.UUID]model.Product),
	}
}

// WithDB returns the repository itself; there is no connection to swap.
func (r *InMemoryProductRepository) WithDB(db.DB) ProductRepository {
	return r
}

func (r *InMemoryProductRepository) CreateProduct(_ context.Context, product model.Product) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.skuTakenLocked(product.Sku, uuid.Nil) {
		return model.Product{}, ErrDuplicateSku
	}
	if product.StockQuantity > math.MaxInt32 {
		return model.Product{}, ErrStockOutOfRange
	}

	r.products[product.ID] = product
	return product, nil
}

func (r *InMemoryProductRepository) GetProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return model.Product{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryProductRepository) GetProductBySku(_ context.Context, sku string) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Sku == sku {
			return p, nil
		}
	}
	return model.Product{}, ErrNotFound
}

func (r *InMemoryProductRepository) SkuTaken(_ context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.skuTakenLocked(sku, excludeID), nil
}

func (r *InMemoryProductRepository) ListProducts(_ context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	r.mu.RLock()
	matched := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchesFilter(p, filter) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b model.Product) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	total := len(matched)
	start := min(filter.Offset, total)
	end := min(start+filter.Limit, total)

	return matched[start:end], total, nil
}

func (r *InMemoryProductRepository) UpdateProduct(
	_ context.Context,
	id uuid.UUID,
	patch model.ProductPatch,
	updatedAt time.Time,
) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return model.Product{}, ErrNotFound
	}

	if patch.Sku != nil && r.skuTakenLocked(*patch.Sku, id) {
		return model.Product{}, ErrDuplicateSku
	}
	if patch.StockQuantity != nil && *patch.StockQuantity > math.MaxInt32 {
		return model.Product{}, ErrStockOutOfRange
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Sku != nil {
		p.Sku = *patch.Sku
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
	p.UpdatedAt = updatedAt

	r.products[id] = p
	return p, nil
}

func (r *InMemoryProductRepository) DeleteProduct(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *InMemoryProductRepository) AdjustStock(_ context.Context, id uuid.UUID, delta int, updatedAt time.Time) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return model.Product{}, ErrNotFound
	}

	newStock := p.StockQuantity + delta
	if newStock < 0 {
		return model.Product{}, ErrInsufficientStock
	}
	if newStock > math.MaxInt32 {
		return model.Product{}, ErrStockOutOfRange
	}

	p.StockQuantity = newStock
	p.UpdatedAt = updatedAt
	r.products[id] = p
	return p, nil
}

func (r *InMemoryProductRepository) skuTakenLocked(sku string, excludeID uuid.UUID) bool {
	for id, p := range r.products {
		if p.Sku == sku && id != excludeID {
			return true
		}
	}
	return false
}

func matchesFilter(p model.Product, f model.ProductFilter) bool {
	switch {
	case f.Name != nil && !strings.Contains(p.Name, *f.Name):
		return false
	case f.Sku != nil && !strings.Contains(p.Sku, *f.Sku):
		return false
	case f.MinPrice != nil && p.Price < *f.MinPrice:
		return false
	case f.MaxPrice != nil && p.Price > *f.MaxPrice:
		return false
	case f.MinStock != nil && p.StockQuantity < *f.MinStock:
		return false
	case f.MaxStock != nil && p.StockQuantity > *f.MaxStock:
		return false
	}
	return true
}

// InMemoryTx runs transaction funcs one at a time against a nil DB, for use
// with the in-memory repositories whose WithDB ignores its argument.
type InMemoryTx struct {
	mu sync.Mutex
}

func (t *InMemoryTx) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return txFunc(nil)
}
