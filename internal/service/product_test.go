package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-management/internal/apperr"
	"github.com/tuanvumaihuynh/product-management/internal/event"
	"github.com/tuanvumaihuynh/product-management/internal/model"
	"github.com/tuanvumaihuynh/product-management/internal/repository"
	"github.com/tuanvumaihuynh/product-management/internal/service"
	"github.com/tuanvumaihuynh/product-management/internal/storage/db"
	"github.com/tuanvumaihuynh/product-management/pkg/outbox"
	"github.com/tuanvumaihuynh/product-management/pkg/ptr"
	"github.com/tuanvumaihuynh/product-management/pkg/validator"
	"github.com/tuanvumaihuynh/product-management/pkg/zerror"
)

type stubOutboxRepo struct {
	mu   sync.Mutex
	msgs []repository.CreateOutboxMsgParams
	err  error
}

func (r *stubOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *stubOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, params)
	return nil
}

func (r *stubOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, int32) ([]repository.OutboxMsg, error) {
	return nil, nil
}

func (r *stubOutboxRepo) MarkOutboxMsgsProcessed(context.Context, []repository.OutboxMsgResult) error {
	return nil
}

func (r *stubOutboxRepo) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	topics := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		topics[i] = m.Topic
	}
	return topics
}

type failingRepo struct {
	*repository.InMemoryProductRepository
}

func (r failingRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (failingRepo) GetProduct(context.Context, uuid.UUID) (model.Product, error) {
	return model.Product{}, errors.New("connection reset")
}

func newService(t *testing.T) (service.ProductService, *repository.InMemoryProductRepository) {
	t.Helper()
	repo := repository.NewInMemoryProductRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewProductService(logger, &repository.InMemoryTx{}, repo, nil), repo
}

func mouseParams() service.CreateProductParams {
	return service.CreateProductParams{
		Name:        "Mouse",
		Description: "Wireless",
		Price:       ptr.New(39.99),
		Sku:         "WM-004",
	}
}

func assertZErrorCode(t *testing.T, err error, code string) zerror.ZError {
	t.Helper()
	var zerr zerror.ZError
	require.ErrorAs(t, err, &zerr)
	assert.Equal(t, code, zerr.Code())
	return zerr
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults stock to zero and round-trips", func(t *testing.T) {
		svc, _ := newService(t)

		created, err := svc.CreateProduct(ctx, mouseParams())
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, 0, created.StockQuantity)
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)

		got, err := svc.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, created, *got)
	})

	t.Run("duplicate sku keeps the first", func(t *testing.T) {
		svc, _ := newService(t)

		first, err := svc.CreateProduct(ctx, mouseParams())
		require.NoError(t, err)

		dup := mouseParams()
		dup.Name = "Other"
		_, err = svc.CreateProduct(ctx, dup)
		require.ErrorIs(t, err, apperr.DuplicateSkuErr)
		zerr := assertZErrorCode(t, err, apperr.DuplicateSkuCode)
		assert.Equal(t, "Product with SKU 'WM-004' already exists", zerr.Msg())

		page, err := svc.ListProducts(ctx, service.ListProductsParams{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, first.ID, page.Items[0].ID)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(p *service.CreateProductParams)
			field  string
		}{
			{name: "missing name", mutate: func(p *service.CreateProductParams) { p.Name = "" }, field: "name"},
			{name: "name too long", mutate: func(p *service.CreateProductParams) { p.Name = string(make([]byte, 256)) }, field: "name"},
			{name: "missing description", mutate: func(p *service.CreateProductParams) { p.Description = "" }, field: "description"},
			{name: "missing price", mutate: func(p *service.CreateProductParams) { p.Price = nil }, field: "price"},
			{name: "negative price", mutate: func(p *service.CreateProductParams) { p.Price = ptr.New(-0.01) }, field: "price"},
			{name: "sku too long", mutate: func(p *service.CreateProductParams) { p.Sku = string(make([]byte, 101)) }, field: "sku"},
			{name: "negative stock", mutate: func(p *service.CreateProductParams) { p.StockQuantity = ptr.New(-1) }, field: "stockQuantity"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, _ := newService(t)
				params := mouseParams()
				tt.mutate(&params)

				_, err := svc.CreateProduct(ctx, params)
				require.ErrorIs(t, err, apperr.ValidationErr)

				details := validator.FieldErrors(err)
				require.Len(t, details, 1)
				assert.Equal(t, tt.field, details[0].Field)
			})
		}
	})
}

func TestProductService_GetProduct(t *testing.T) {
	svc, _ := newService(t)

	got, err := svc.GetProduct(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.GetProductBySku(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestProductService_GetProductStoreFailure(t *testing.T) {
	repo := failingRepo{repository.NewInMemoryProductRepository()}
	svc := service.NewProductService(slog.New(slog.NewTextHandler(io.Discard, nil)), &repository.InMemoryTx{}, repo, nil)

	_, err := svc.GetProduct(context.Background(), uuid.New())
	require.Error(t, err)

	var zerr zerror.ZError
	assert.False(t, errors.As(err, &zerr))
}

func TestProductService_ListProducts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	for _, sku := range []string{"A-1", "A-2", "B-1", "B-2", "B-3"} {
		p := mouseParams()
		p.Sku = sku
		_, err := svc.CreateProduct(ctx, p)
		require.NoError(t, err)
	}

	t.Run("defaults", func(t *testing.T) {
		page, err := svc.ListProducts(ctx, service.ListProductsParams{})
		require.NoError(t, err)
		assert.Len(t, page.Items, 5)
		assert.Equal(t, model.Pagination{Total: 5, Limit: 50, Offset: 0, HasMore: false}, page.Pagination)
	})

	t.Run("window length and hasMore", func(t *testing.T) {
		for _, tc := range []struct{ limit, offset, wantLen int }{
			{2, 0, 2}, {2, 4, 1}, {3, 5, 0}, {10, 1, 4},
		} {
			page, err := svc.ListProducts(ctx, service.ListProductsParams{Limit: ptr.New(tc.limit), Offset: ptr.New(tc.offset)})
			require.NoError(t, err)
			assert.Len(t, page.Items, tc.wantLen)
			assert.Equal(t, tc.offset+tc.limit < 5, page.Pagination.HasMore)
		}
	})

	t.Run("stable order across calls", func(t *testing.T) {
		first, err := svc.ListProducts(ctx, service.ListProductsParams{})
		require.NoError(t, err)
		second, err := svc.ListProducts(ctx, service.ListProductsParams{})
		require.NoError(t, err)
		assert.Equal(t, first.Items, second.Items)
	})

	t.Run("sku filter", func(t *testing.T) {
		page, err := svc.ListProducts(ctx, service.ListProductsParams{Sku: ptr.New("B-")})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Pagination.Total)
	})

	t.Run("invalid query", func(t *testing.T) {
		for _, params := range []service.ListProductsParams{
			{Limit: ptr.New(0)},
			{Limit: ptr.New(101)},
			{Offset: ptr.New(-1)},
			{MinPrice: ptr.New(-1.0)},
			{MaxStock: ptr.New(-1)},
		} {
			_, err := svc.ListProducts(ctx, params)
			assert.ErrorIs(t, err, apperr.ValidationErr)
		}
	})
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	mouse, err := svc.CreateProduct(ctx, mouseParams())
	require.NoError(t, err)

	other := mouseParams()
	other.Sku = "KB-001"
	_, err = svc.CreateProduct(ctx, other)
	require.NoError(t, err)

	t.Run("empty partial is rejected", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, mouse.ID, service.UpdateProductParams{})
		require.ErrorIs(t, err, apperr.ValidationErr)
		zerr := assertZErrorCode(t, err, apperr.ValidationErrorCode)
		assert.Equal(t, "No valid fields provided for update", zerr.Msg())

		got, err := svc.GetProduct(ctx, mouse.ID)
		require.NoError(t, err)
		assert.Equal(t, mouse, *got)
	})

	t.Run("empty string is invalid", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, mouse.ID, service.UpdateProductParams{Name: ptr.New("")})
		assert.ErrorIs(t, err, apperr.ValidationErr)
	})

	t.Run("only supplied fields change", func(t *testing.T) {
		updated, err := svc.UpdateProduct(ctx, mouse.ID, service.UpdateProductParams{Price: ptr.New(29.99)})
		require.NoError(t, err)
		assert.Equal(t, 29.99, updated.Price)
		assert.Equal(t, mouse.Name, updated.Name)
		assert.Equal(t, mouse.Sku, updated.Sku)
		assert.Equal(t, mouse.CreatedAt, updated.CreatedAt)
		assert.False(t, updated.UpdatedAt.Before(mouse.UpdatedAt))
	})

	t.Run("same sku is not a duplicate", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, mouse.ID, service.UpdateProductParams{Sku: ptr.New("WM-004")})
		assert.NoError(t, err)
	})

	t.Run("sku collision", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, mouse.ID, service.UpdateProductParams{Sku: ptr.New("KB-001")})
		assert.ErrorIs(t, err, apperr.DuplicateSkuErr)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New()
		_, err := svc.UpdateProduct(ctx, id, service.UpdateProductParams{Name: ptr.New("x")})
		require.ErrorIs(t, err, apperr.ProductNotFoundErr)
		zerr := assertZErrorCode(t, err, apperr.ProductNotFoundCode)
		assert.Equal(t, "Product with ID '"+id.String()+"' not found", zerr.Msg())
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, uuid.New()), apperr.ProductNotFoundErr)

	p, err := svc.CreateProduct(ctx, mouseParams())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), apperr.ProductNotFoundErr)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProductService_AdjustStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	p, err := svc.CreateProduct(ctx, mouseParams())
	require.NoError(t, err)

	adjusted, err := svc.AdjustStock(ctx, p.ID, service.AdjustStockParams{Quantity: ptr.New(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, adjusted.StockQuantity)

	_, err = svc.AdjustStock(ctx, p.ID, service.AdjustStockParams{Quantity: ptr.New(-10)})
	require.ErrorIs(t, err, apperr.InsufficientStockErr)
	var zerr zerror.ZError
	require.ErrorAs(t, err, &zerr)
	assert.Equal(t, zerror.StatusBadRequest, zerr.Status())

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)

	_, err = svc.AdjustStock(ctx, p.ID, service.AdjustStockParams{})
	assert.ErrorIs(t, err, apperr.ValidationErr)

	_, err = svc.AdjustStock(ctx, uuid.New(), service.AdjustStockParams{Quantity: ptr.New(1)})
	assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
}

func TestProductService_StockRange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	params := mouseParams()
	params.StockQuantity = ptr.New(3_000_000_000)
	_, err := svc.CreateProduct(ctx, params)
	assertZErrorCode(t, err, apperr.ValidationErrorCode)

	params.StockQuantity = ptr.New(math.MaxInt32)
	p, err := svc.CreateProduct(ctx, params)
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, p.ID, service.UpdateProductParams{StockQuantity: ptr.New(math.MaxInt32 + 1)})
	assertZErrorCode(t, err, apperr.ValidationErrorCode)

	_, err = svc.AdjustStock(ctx, p.ID, service.AdjustStockParams{Quantity: ptr.New(3_000_000_000)})
	assertZErrorCode(t, err, apperr.ValidationErrorCode)

	_, err = svc.AdjustStock(ctx, p.ID, service.AdjustStockParams{Quantity: ptr.New(1)})
	zerr := assertZErrorCode(t, err, apperr.ValidationErrorCode)
	assert.Equal(t, "Stock quantity out of range", zerr.Msg())
	assert.Equal(t, zerror.StatusValidationFailed, zerr.Status())

	_, err = svc.ListProducts(ctx, service.ListProductsParams{MaxStock: ptr.New(math.MaxInt32 + 1)})
	assertZErrorCode(t, err, apperr.ValidationErrorCode)
}

func TestUpdateProductParams_RejectsNull(t *testing.T) {
	var params service.UpdateProductParams
	err := json.Unmarshal([]byte(`{"name":null,"price":5}`), &params)

	var typeErr *json.UnmarshalTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "name", typeErr.Field)

	params = service.UpdateProductParams{}
	require.NoError(t, json.Unmarshal([]byte(`{"price":5,"extra":null}`), &params))
	assert.Nil(t, params.Name)
	require.NotNil(t, params.Price)
	assert.Equal(t, 5.0, *params.Price)
}

func TestProductService_WritesOutboxEvents(t *testing.T) {
	ctx := context.Background()
	outboxRepo := &stubOutboxRepo{}
	svc := service.NewProductService(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		&repository.InMemoryTx{},
		repository.NewInMemoryProductRepository(),
		outboxRepo,
	)

	p, err := svc.CreateProduct(ctx, mouseParams())
	require.NoError(t, err)
	_, err = svc.UpdateProduct(ctx, p.ID, service.UpdateProductParams{Name: ptr.New("Mouse 2")})
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, p.ID, service.AdjustStockParams{Quantity: ptr.New(3)})
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, p.ID, service.AdjustStockParams{Quantity: ptr.New(-30)})
	require.Error(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, p.ID))

	assert.Equal(t, []string{
		event.TopicProductCreated,
		event.TopicProductUpdated,
		event.TopicProductStockAdjusted,
		event.TopicProductDeleted,
	}, outboxRepo.topics())

	msg := outboxRepo.msgs[2]
	assert.Equal(t, p.ID.String(), *msg.PartitionKey)
	assert.Equal(t, event.TopicProductStockAdjusted, msg.Headers[outbox.EventTypeHeader])

	var ev event.StockAdjustedEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &ev))
	assert.Equal(t, 3, ev.Delta)
	assert.Equal(t, 3, ev.StockQuantity)
	assert.Equal(t, "WM-004", ev.Sku)
}

func TestProductService_OutboxFailureFailsWrite(t *testing.T) {
	svc := service.NewProductService(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		&repository.InMemoryTx{},
		repository.NewInMemoryProductRepository(),
		&stubOutboxRepo{err: errors.New("outbox unavailable")},
	)

	_, err := svc.CreateProduct(context.Background(), mouseParams())
	require.Error(t, err)
	assert.ErrorContains(t, err, "outbox unavailable")
}
