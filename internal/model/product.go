package model

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Sku           string    `json:"sku"`
	StockQuantity int       `json:"stockQuantity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProductFilter narrows a product listing. Nil fields are not applied.
// Name and Sku match as substrings; ranges are inclusive.
type ProductFilter struct {
	Name     *string
	Sku      *string
	MinPrice *float64
	MaxPrice *float64
	MinStock *int
	MaxStock *int
	Limit    int
	Offset   int
}

// ProductPatch holds the fields of a partial update. Nil fields keep their stored value.
type ProductPatch struct {
	Name          *string
	Description   *string
	Price         *float64
	Sku           *string
	StockQuantity *int
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil &&
		p.Description == nil &&
		p.Price == nil &&
		p.Sku == nil &&
		p.StockQuantity == nil
}
