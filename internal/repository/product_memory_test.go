package repository_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-management/internal/model"
	"github.com/tuanvumaihuynh/product-management/internal/repository"
	"github.com/tuanvumaihuynh/product-management/pkg/ptr"
)

func newProduct(sku string, price float64, stock int, createdAt time.Time) model.Product {
	return model.Product{
		ID:            uuid.Must(uuid.NewV7()),
		Name:          "Product " + sku,
		Description:   "Description " + sku,
		Price:         price,
		Sku:           sku,
		StockQuantity: stock,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestInMemoryProductRepository_CreateDuplicateSku(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryProductRepository()
	now := time.Now()

	first, err := repo.CreateProduct(ctx, newProduct("WM-004", 39.99, 0, now))
	require.NoError(t, err)

	_, err = repo.CreateProduct(ctx, newProduct("WM-004", 10, 0, now))
	assert.ErrorIs(t, err, repository.ErrDuplicateSku)

	_, total, err := repo.ListProducts(ctx, model.ProductFilter{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	got, err := repo.GetProductBySku(ctx, "WM-004")
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestInMemoryProductRepository_ListProducts(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryProductRepository()
	base := time.Now()

	for i := range 5 {
		_, err := repo.CreateProduct(ctx, newProduct(fmt.Sprintf("SKU-%d", i), float64(i*10), i, base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	t.Run("pagination window", func(t *testing.T) {
		products, total, err := repo.ListProducts(ctx, model.ProductFilter{Limit: 2, Offset: 3})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, products, 2)
		assert.Equal(t, "SKU-3", products[0].Sku)
		assert.Equal(t, "SKU-4", products[1].Sku)
	})

	t.Run("offset past end", func(t *testing.T) {
		products, total, err := repo.ListProducts(ctx, model.ProductFilter{Limit: 10, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, products)
	})

	t.Run("ranges are inclusive", func(t *testing.T) {
		products, total, err := repo.ListProducts(ctx, model.ProductFilter{
			MinPrice: ptr.New(10.0),
			MaxPrice: ptr.New(30.0),
			MaxStock: ptr.New(2),
			Limit:    50,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, products, 2)
		assert.Equal(t, "SKU-1", products[0].Sku)
		assert.Equal(t, "SKU-2", products[1].Sku)
	})

	t.Run("sku substring", func(t *testing.T) {
		products, total, err := repo.ListProducts(ctx, model.ProductFilter{Sku: ptr.New("U-4"), Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "SKU-4", products[0].Sku)
	})
}

func TestInMemoryProductRepository_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryProductRepository()
	now := time.Now()

	a, err := repo.CreateProduct(ctx, newProduct("A-1", 1, 1, now))
	require.NoError(t, err)
	_, err = repo.CreateProduct(ctx, newProduct("B-1", 1, 1, now))
	require.NoError(t, err)

	_, err = repo.UpdateProduct(ctx, a.ID, model.ProductPatch{Sku: ptr.New("B-1")}, now)
	assert.ErrorIs(t, err, repository.ErrDuplicateSku)

	later := now.Add(time.Minute)
	updated, err := repo.UpdateProduct(ctx, a.ID, model.ProductPatch{Sku: ptr.New("A-1"), Price: ptr.New(2.5)}, later)
	require.NoError(t, err)
	assert.Equal(t, "A-1", updated.Sku)
	assert.Equal(t, 2.5, updated.Price)
	assert.Equal(t, a.Name, updated.Name)
	assert.Equal(t, later, updated.UpdatedAt)

	_, err = repo.UpdateProduct(ctx, uuid.New(), model.ProductPatch{Name: ptr.New("x")}, later)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInMemoryProductRepository_AdjustStock(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryProductRepository()
	p, err := repo.CreateProduct(ctx, newProduct("S-1", 1, 5, time.Now()))
	require.NoError(t, err)

	_, err = repo.AdjustStock(ctx, p.ID, -6, time.Now())
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)

	got, err := repo.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)

	got, err = repo.AdjustStock(ctx, p.ID, -5, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)

	_, err = repo.AdjustStock(ctx, uuid.New(), 1, time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInMemoryProductRepository_StockRange(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryProductRepository()

	_, err := repo.CreateProduct(ctx, newProduct("R-0", 1, math.MaxInt32+1, time.Now()))
	assert.ErrorIs(t, err, repository.ErrStockOutOfRange)

	p, err := repo.CreateProduct(ctx, newProduct("R-1", 1, math.MaxInt32, time.Now()))
	require.NoError(t, err)

	_, err = repo.AdjustStock(ctx, p.ID, 1, time.Now())
	assert.ErrorIs(t, err, repository.ErrStockOutOfRange)

	_, err = repo.UpdateProduct(ctx, p.ID, model.ProductPatch{StockQuantity: ptr.New(math.MaxInt32 + 1)}, time.Now())
	assert.ErrorIs(t, err, repository.ErrStockOutOfRange)

	got, err := repo.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, got.StockQuantity)
}

func TestInMemoryProductRepository_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryProductRepository()
	p, err := repo.CreateProduct(ctx, newProduct("D-1", 1, 0, time.Now()))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, repo.DeleteProduct(ctx, p.ID), repository.ErrNotFound)

	_, err = repo.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
