package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/product-management/internal/apperr"
	"github.com/tuanvumaihuynh/product-management/internal/event"
	"github.com/tuanvumaihuynh/product-management/internal/model"
	"github.com/tuanvumaihuynh/product-management/internal/repository"
	"github.com/tuanvumaihuynh/product-management/internal/storage/db"
	"github.com/tuanvumaihuynh/product-management/pkg/outbox"
	"github.com/tuanvumaihuynh/product-management/pkg/ptr"
	"github.com/tuanvumaihuynh/product-management/pkg/validator"
	"github.com/tuanvumaihuynh/product-management/pkg/zerror"
)

// Transactor opens a transaction. [db.Client] satisfies it.
type Transactor interface {
	WithTx(ctx context.Context, txFunc func(db.DB) error) error
}

// ProductService is the product business core shared by the REST and agent façades.
// Failures are returned as apperr values; anything else is an internal error.
type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	// GetProduct returns nil, nil when no product has id.
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// GetProductBySku returns nil, nil when no product has exactly sku.
	GetProductBySku(ctx context.Context, sku string) (*model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) (model.Page[model.Product], error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, params AdjustStockParams) (model.Product, error)
}

type productService struct {
	logger        *slog.Logger
	db            Transactor
	validator     validator.Validator
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
	now           func() time.Time
}

// NewProductService builds the service. A nil outboxMsgRepo disables change events.
func NewProductService(
	logger *slog.Logger,
	db Transactor,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		logger:        logger.With(slog.String("service", "product")),
		db:            db,
		validator:     validator.NewDefaultValidator(),
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, apperr.ValidationErr.WrapParent(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := s.now()
	product := model.Product{
		ID:            id,
		Name:          params.Name,
		Description:   params.Description,
		Price:         *params.Price,
		Sku:           params.Sku,
		StockQuantity: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if params.StockQuantity != nil {
		product.StockQuantity = *params.StockQuantity
	}

	var created model.Product
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		repo := s.productRepo.WithDB(tx)

		taken, err := repo.SkuTaken(ctx, product.Sku, uuid.Nil)
		if err != nil {
			return fmt.Errorf("check sku: %w", err)
		}
		if taken {
			return duplicateSkuErr(product.Sku)
		}

		if created, err = repo.CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		return s.writeEvent(ctx, tx, event.TopicProductCreated, created.ID, event.NewProductChangedEvent(created))
	}); err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", translateErr(err, uuid.Nil, product.Sku))
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", created.ID.String()),
		slog.String("sku", created.Sku),
	)

	return created, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("product repository get product: %w", err)
	}

	return &product, nil
}

func (s *productService) GetProductBySku(ctx context.Context, sku string) (*model.Product, error) {
	product, err := s.productRepo.GetProductBySku(ctx, sku)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("product repository get product by sku: %w", err)
	}

	return &product, nil
}

func (s *productService) ListProducts(ctx context.Context, params ListProductsParams) (model.Page[model.Product], error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Page[model.Product]{}, apperr.ValidationErr.WrapParent(err)
	}

	filter := params.filter()
	products, total, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		return model.Page[model.Product]{}, fmt.Errorf("product repository list products: %w", err)
	}

	return model.Page[model.Product]{
		Items:      products,
		Pagination: model.NewPagination(total, filter.Limit, filter.Offset),
	}, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, apperr.ValidationErr.WrapParent(err)
	}

	patch := params.patch()
	if patch.IsEmpty() {
		return model.Product{}, apperr.ValidationErr.WithMsg("No valid fields provided for update")
	}

	var updated model.Product
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		repo := s.productRepo.WithDB(tx)

		current, err := repo.GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository get product: %w", err)
		}

		if patch.Sku != nil && *patch.Sku != current.Sku {
			taken, err := repo.SkuTaken(ctx, *patch.Sku, id)
			if err != nil {
				return fmt.Errorf("check sku: %w", err)
			}
			if taken {
				return duplicateSkuErr(*patch.Sku)
			}
		}

		if updated, err = repo.UpdateProduct(ctx, id, patch, s.now()); err != nil {
			return fmt.Errorf("product repository update product: %w", err)
		}

		return s.writeEvent(ctx, tx, event.TopicProductUpdated, id, event.NewProductChangedEvent(updated))
	}); err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", translateErr(err, id, ptr.Deref(patch.Sku)))
	}

	return updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.productRepo.WithDB(tx).DeleteProduct(ctx, id); err != nil {
			return fmt.Errorf("product repository delete product: %w", err)
		}

		return s.writeEvent(ctx, tx, event.TopicProductDeleted, id, event.ProductDeletedEvent{
			ProductID:  id.String(),
			OccurredAt: s.now(),
		})
	}); err != nil {
		return fmt.Errorf("delete product: %w", translateErr(err, id, ""))
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id.String()))

	return nil
}

func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, params AdjustStockParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, apperr.ValidationErr.WrapParent(err)
	}
	delta := *params.Quantity

	var adjusted model.Product
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		var err error
		if adjusted, err = s.productRepo.WithDB(tx).AdjustStock(ctx, id, delta, s.now()); err != nil {
			return fmt.Errorf("product repository adjust stock: %w", err)
		}

		return s.writeEvent(ctx, tx, event.TopicProductStockAdjusted, id, event.StockAdjustedEvent{
			ProductID:     id.String(),
			Sku:           adjusted.Sku,
			Delta:         delta,
			StockQuantity: adjusted.StockQuantity,
			OccurredAt:    adjusted.UpdatedAt,
		})
	}); err != nil {
		return model.Product{}, fmt.Errorf("adjust stock: %w", translateErr(err, id, ""))
	}

	return adjusted, nil
}

// writeEvent stores ev in the outbox within tx, keyed by product id so a
// product's events stay ordered on one partition.
func (s *productService) writeEvent(ctx context.Context, tx db.DB, topic string, productID uuid.UUID, ev any) error {
	if s.outboxMsgRepo == nil {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := s.outboxMsgRepo.
		WithDB(tx).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx, topic),
			Payload:      payload,
			PartitionKey: ptr.New(productID.String()),
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

// translateErr turns repository sentinels into the application error catalogue.
func translateErr(err error, id uuid.UUID, sku string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.ProductNotFoundErr.
			WithMsg(fmt.Sprintf("Product with ID '%s' not found", id)).
			WrapParent(err)
	case errors.Is(err, repository.ErrDuplicateSku):
		return duplicateSkuErr(sku).WrapParent(err)
	case errors.Is(err, repository.ErrInsufficientStock):
		return apperr.InsufficientStockErr.WrapParent(err)
	case errors.Is(err, repository.ErrStockOutOfRange):
		return apperr.ValidationErr.WithMsg("Stock quantity out of range").WrapParent(err)
	default:
		return err
	}
}

func duplicateSkuErr(sku string) zerror.ZError {
	return apperr.DuplicateSkuErr.WithMsg(fmt.Sprintf("Product with SKU '%s' already exists", sku))
}
