package event

import (
	"time"

	"github.com/tuanvumaihuynh/product-management/internal/model"
)

const (
	TopicProductCreated       = "product.created"
	TopicProductUpdated       = "product.updated"
	TopicProductDeleted       = "product.deleted"
	TopicProductStockAdjusted = "product.stock_adjusted"
)

// Topics lists every topic the product service publishes to.
var Topics = []string{
	TopicProductCreated,
	TopicProductUpdated,
	TopicProductDeleted,
	TopicProductStockAdjusted,
}

// ProductChangedEvent is the payload of product.created and product.updated.
type ProductChangedEvent struct {
	ProductID     string    `json:"productId"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Sku           string    `json:"sku"`
	StockQuantity int       `json:"stockQuantity"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type ProductDeletedEvent struct {
	ProductID  string    `json:"productId"`
	OccurredAt time.Time `json:"occurredAt"`
}

type StockAdjustedEvent struct {
	ProductID     string    `json:"productId"`
	Sku           string    `json:"sku"`
	Delta         int       `json:"delta"`
	StockQuantity int       `json:"stockQuantity"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewProductChangedEvent(p model.Product) ProductChangedEvent {
	return ProductChangedEvent{
		ProductID:     p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Sku:           p.Sku,
		StockQuantity: p.StockQuantity,
		OccurredAt:    p.UpdatedAt,
	}
}
