package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/product-management/internal/service"
	"github.com/tuanvumaihuynh/product-management/pkg/ptr"
)

// Products is the sample catalogue.
var Products = []service.CreateProductParams{
	{
		Name:          "Wireless Bluetooth Headphones",
		Description:   "Over-ear headphones with active noise cancellation and 30 hours of battery life",
		Price:         ptr.New(99.99),
		Sku:           "WBH-001",
		StockQuantity: ptr.New(50),
	},
	{
		Name:          "Smartphone Stand",
		Description:   "Adjustable aluminium desk stand for phones and small tablets",
		Price:         ptr.New(24.99),
		Sku:           "SMS-002",
		StockQuantity: ptr.New(100),
	},
	{
		Name:          "USB-C Charging Cable",
		Description:   "2 m braided USB-C to USB-C cable, 60 W",
		Price:         ptr.New(12.99),
		Sku:           "UCC-003",
		StockQuantity: ptr.New(200),
	},
	{
		Name:          "Wireless Mouse",
		Description:   "Ergonomic 2.4 GHz mouse with silent clicks",
		Price:         ptr.New(39.99),
		Sku:           "WM-004",
		StockQuantity: ptr.New(75),
	},
	{
		Name:          "Portable Power Bank",
		Description:   "10000 mAh power bank with USB-C power delivery",
		Price:         ptr.New(29.99),
		Sku:           "PPB-005",
		StockQuantity: ptr.New(30),
	},
}

// Run creates every product in products whose SKU is not taken yet and
// returns how many were created.
func Run(ctx context.Context, logger *slog.Logger, productSvc service.ProductService, products []service.CreateProductParams) (int, error) {
	created := 0
	for _, params := range products {
		existing, err := productSvc.GetProductBySku(ctx, params.Sku)
		if err != nil {
			return created, fmt.Errorf("look up sku %s: %w", params.Sku, err)
		}
		if existing != nil {
			logger.InfoContext(ctx, "product already exists, skipping",
				slog.String("sku", params.Sku),
				slog.String("id", existing.ID.String()))
			continue
		}

		product, err := productSvc.CreateProduct(ctx, params)
		if err != nil {
			return created, fmt.Errorf("create product %s: %w", params.Sku, err)
		}
		created++

		logger.InfoContext(ctx, "created product",
			slog.String("sku", product.Sku),
			slog.String("name", product.Name),
			slog.String("id", product.ID.String()))
	}

	return created, nil
}
