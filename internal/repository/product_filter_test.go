package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/product-management/internal/model"
	"github.com/tuanvumaihuynh/product-management/pkg/ptr"
)

func TestBuildProductFilter(t *testing.T) {
	tests := []struct {
		name      string
		filter    model.ProductFilter
		wantWhere string
		wantArgs  pgx.NamedArgs
	}{
		{
			name:      "no filters",
			filter:    model.ProductFilter{Limit: 50},
			wantWhere: "",
			wantArgs:  pgx.NamedArgs{},
		},
		{
			name:      "name substring",
			filter:    model.ProductFilter{Name: ptr.New("Mouse")},
			wantWhere: " WHERE name LIKE @name",
			wantArgs:  pgx.NamedArgs{"name": "%Mouse%"},
		},
		{
			name:      "wildcards are literal",
			filter:    model.ProductFilter{Sku: ptr.New(`50%_off\`)},
			wantWhere: " WHERE sku LIKE @sku",
			wantArgs:  pgx.NamedArgs{"sku": `%50\%\_off\\%`},
		},
		{
			name: "all filters joined with AND",
			filter: model.ProductFilter{
				Name:     ptr.New("a"),
				Sku:      ptr.New("b"),
				MinPrice: ptr.New(1.5),
				MaxPrice: ptr.New(10.0),
				MinStock: ptr.New(0),
				MaxStock: ptr.New(7),
			},
			wantWhere: " WHERE name LIKE @name AND sku LIKE @sku AND price >= @min_price AND price <= @max_price" +
				" AND stock_quantity >= @min_stock AND stock_quantity <= @max_stock",
			wantArgs: pgx.NamedArgs{
				"name":      "%a%",
				"sku":       "%b%",
				"min_price": decimal.NewFromFloat(1.5),
				"max_price": decimal.NewFromFloat(10),
				"min_stock": 0,
				"max_stock": 7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildProductFilter(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestToInt32(t *testing.T) {
	v, err := toInt32(42)
	assert.NoError(t, err)
	assert.Equal(t, int32(42), v)

	_, err = toInt32(1 << 40)
	assert.ErrorIs(t, err, ErrStockOutOfRange)

	_, err = NewProductRepository(nil).CreateProduct(context.Background(), model.Product{
		ID:            uuid.New(),
		Sku:           "BIG-1",
		StockQuantity: 3_000_000_000,
	})
	assert.ErrorIs(t, err, ErrStockOutOfRange)
}
