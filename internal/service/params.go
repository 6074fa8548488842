package service

import (
	"bytes"
	"encoding/json"
	"maps"
	"reflect"
	"slices"

	"github.com/tuanvumaihuynh/product-management/internal/model"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type CreateProductParams struct {
	Name          string   `json:"name" validate:"required,max=255"`
	Description   string   `json:"description" validate:"required"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	Sku           string   `json:"sku" validate:"required,max=100"`
	StockQuantity *int     `json:"stockQuantity" validate:"omitnil,gte=0,max=2147483647"`
}

// UpdateProductParams is a partial update; nil fields are left unchanged.
type UpdateProductParams struct {
	Name          *string  `json:"name" validate:"omitnil,min=1,max=255"`
	Description   *string  `json:"description" validate:"omitnil,min=1"`
	Price         *float64 `json:"price" validate:"omitnil,gte=0"`
	Sku           *string  `json:"sku" validate:"omitnil,min=1,max=100"`
	StockQuantity *int     `json:"stockQuantity" validate:"omitnil,gte=0,max=2147483647"`
}

var updateFieldTypes = map[string]reflect.Type{
	"name":          reflect.TypeFor[string](),
	"description":   reflect.TypeFor[string](),
	"price":         reflect.TypeFor[float64](),
	"sku":           reflect.TypeFor[string](),
	"stockQuantity": reflect.TypeFor[int](),
}

// UnmarshalJSON rejects an explicit null for any updatable field. Absent
// fields stay nil.
func (p *UpdateProductParams) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(fields)) {
		typ, ok := updateFieldTypes[name]
		if ok && bytes.Equal(fields[name], []byte("null")) {
			return &json.UnmarshalTypeError{Value: "null", Type: typ, Field: name}
		}
	}

	type plain UpdateProductParams
	return json.Unmarshal(data, (*plain)(p))
}

func (p UpdateProductParams) patch() model.ProductPatch {
	return model.ProductPatch{
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Sku:           p.Sku,
		StockQuantity: p.StockQuantity,
	}
}

type ListProductsParams struct {
	Name     *string  `json:"name"`
	Sku      *string  `json:"sku"`
	MinPrice *float64 `json:"minPrice" validate:"omitnil,gte=0"`
	MaxPrice *float64 `json:"maxPrice" validate:"omitnil,gte=0"`
	MinStock *int     `json:"minStock" validate:"omitnil,gte=0,max=2147483647"`
	MaxStock *int     `json:"maxStock" validate:"omitnil,gte=0,max=2147483647"`
	Limit    *int     `json:"limit" validate:"omitnil,min=1,max=100"`
	Offset   *int     `json:"offset" validate:"omitnil,gte=0"`
}

func (p ListProductsParams) filter() model.ProductFilter {
	f := model.ProductFilter{
		Name:     p.Name,
		Sku:      p.Sku,
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
		MinStock: p.MinStock,
		MaxStock: p.MaxStock,
		Limit:    DefaultListLimit,
	}
	if p.Limit != nil {
		f.Limit = *p.Limit
	}
	if p.Offset != nil {
		f.Offset = *p.Offset
	}
	return f
}

// AdjustStockParams carries a signed stock delta.
type AdjustStockParams struct {
	Quantity *int `json:"quantity" validate:"required,min=-2147483647,max=2147483647"`
}
