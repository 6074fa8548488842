package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleProductCreated(ctx context.Context, ev ProductChangedEvent) error {
	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", ev.ProductID),
		slog.String("sku", ev.Sku),
		slog.Int("stock_quantity", ev.StockQuantity),
	)
	s.checkLowStock(ctx, ev.ProductID, ev.Sku, ev.StockQuantity)
	return nil
}

func (s *Service) handleProductUpdated(ctx context.Context, ev ProductChangedEvent) error {
	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", ev.ProductID),
		slog.String("sku", ev.Sku),
	)
	s.checkLowStock(ctx, ev.ProductID, ev.Sku, ev.StockQuantity)
	return nil
}

func (s *Service) handleProductDeleted(ctx context.Context, ev ProductDeletedEvent) error {
	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", ev.ProductID))
	return nil
}

func (s *Service) handleStockAdjusted(ctx context.Context, ev StockAdjustedEvent) error {
	s.logger.InfoContext(ctx, "product stock adjusted",
		slog.String("product_id", ev.ProductID),
		slog.String("sku", ev.Sku),
		slog.Int("delta", ev.Delta),
		slog.Int("stock_quantity", ev.StockQuantity),
	)
	s.checkLowStock(ctx, ev.ProductID, ev.Sku, ev.StockQuantity)
	return nil
}

func (s *Service) checkLowStock(ctx context.Context, productID, sku string, stock int) {
	if stock > s.cfg.LowStockThreshold {
		return
	}
	s.logger.WarnContext(ctx, "product stock low",
		slog.String("product_id", productID),
		slog.String("sku", sku),
		slog.Int("stock_quantity", stock),
		slog.Int("threshold", s.cfg.LowStockThreshold),
	)
}
