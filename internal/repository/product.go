package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-management/internal/model"
	"github.com/tuanvumaihuynh/product-management/internal/storage/db"
)

const (
	uniqueViolation        = "23505"
	numericValueOutOfRange = "22003"
)

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) (model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	GetProductBySku(ctx context.Context, sku string) (model.Product, error)
	// SkuTaken reports whether sku belongs to a product other than excludeID.
	SkuTaken(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error)
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch model.ProductPatch, updatedAt time.Time) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int, updatedAt time.Time) (model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, sku, stock_quantity, created_at, updated_at`

type productRow struct {
	ID            uuid.UUID       `db:"id"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	Price         decimal.Decimal `db:"price"`
	Sku           string          `db:"sku"`
	StockQuantity int32           `db:"stock_quantity"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (row productRow) toModel() model.Product {
	return model.Product{
		ID:            row.ID,
		Name:          row.Name,
		Description:   row.Description,
		Price:         row.Price.InexactFloat64(),
		Sku:           row.Sku,
		StockQuantity: int(row.StockQuantity),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	stock, err := toInt32(product.StockQuantity)
	if err != nil {
		return model.Product{}, err
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO products (id, name, description, price, sku, stock_quantity, created_at, updated_at)
		VALUES (@id, @name, @description, @price, @sku, @stock_quantity, @created_at, @updated_at)
		RETURNING `+productColumns,
		pgx.NamedArgs{
			"id":             product.ID,
			"name":           product.Name,
			"description":    product.Description,
			"price":          decimal.NewFromFloat(product.Price),
			"sku":            product.Sku,
			"stock_quantity": stock,
			"created_at":     product.CreatedAt,
			"updated_at":     product.UpdatedAt,
		},
	)
	if err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}

	created, err := collectOne(rows)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Product{}, ErrDuplicateSku
		}
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return created, nil
}

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Product{}, fmt.Errorf("select product: %w", err)
	}

	product, err := collectOne(rows)
	if err != nil {
		return model.Product{}, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

func (r productRepository) GetProductBySku(ctx context.Context, sku string) (model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE sku = @sku`, pgx.NamedArgs{"sku": sku})
	if err != nil {
		return model.Product{}, fmt.Errorf("select product by sku: %w", err)
	}

	product, err := collectOne(rows)
	if err != nil {
		return model.Product{}, fmt.Errorf("select product by sku: %w", err)
	}

	return product, nil
}

func (r productRepository) SkuTaken(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	var taken bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE sku = @sku AND id <> @exclude_id)`,
		pgx.NamedArgs{"sku": sku, "exclude_id": excludeID},
	).Scan(&taken); err != nil {
		return false, fmt.Errorf("check sku: %w", err)
	}

	return taken, nil
}

func (r productRepository) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	where, args := buildProductFilter(filter)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args["limit"] = filter.Limit
	args["offset"] = filter.Offset

	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products`+where+` ORDER BY created_at, id LIMIT @limit OFFSET @offset`,
		args,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("select products: %w", err)
	}

	productRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, 0, fmt.Errorf("collect products: %w", err)
	}

	products := make([]model.Product, 0, len(productRows))
	for _, row := range productRows {
		products = append(products, row.toModel())
	}

	return products, total, nil
}

// UpdateProduct writes the non-nil fields of patch and always refreshes updated_at.
func (r productRepository) UpdateProduct(
	ctx context.Context,
	id uuid.UUID,
	patch model.ProductPatch,
	updatedAt time.Time,
) (model.Product, error) {
	sets := []string{"updated_at = @updated_at"}
	args := pgx.NamedArgs{"id": id, "updated_at": updatedAt}

	if patch.Name != nil {
		sets = append(sets, "name = @name")
		args["name"] = *patch.Name
	}
	if patch.Description != nil {
		sets = append(sets, "description = @description")
		args["description"] = *patch.Description
	}
	if patch.Price != nil {
		sets = append(sets, "price = @price")
		args["price"] = decimal.NewFromFloat(*patch.Price)
	}
	if patch.Sku != nil {
		sets = append(sets, "sku = @sku")
		args["sku"] = *patch.Sku
	}
	if patch.StockQuantity != nil {
		stock, err := toInt32(*patch.StockQuantity)
		if err != nil {
			return model.Product{}, err
		}
		sets = append(sets, "stock_quantity = @stock_quantity")
		args["stock_quantity"] = stock
	}

	rows, err := r.db.Query(ctx,
		`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id = @id RETURNING `+productColumns,
		args,
	)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}

	updated, err := collectOne(rows)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Product{}, ErrDuplicateSku
		}
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}

	return updated, nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AdjustStock applies delta in a single conditional statement so concurrent
// adjustments can never drive stock below zero.
func (r productRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int, updatedAt time.Time) (model.Product, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + @delta, updated_at = @updated_at
		WHERE id = @id AND stock_quantity + @delta >= 0
		RETURNING `+productColumns,
		pgx.NamedArgs{"id": id, "delta": delta, "updated_at": updatedAt},
	)
	if err != nil {
		return model.Product{}, fmt.Errorf("adjust stock: %w", err)
	}

	product, err := collectOne(rows)
	if err == nil {
		return product, nil
	}
	if isOutOfRange(err) {
		return model.Product{}, ErrStockOutOfRange
	}
	if !errors.Is(err, ErrNotFound) {
		return model.Product{}, fmt.Errorf("adjust stock: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = @id)`,
		pgx.NamedArgs{"id": id},
	).Scan(&exists); err != nil {
		return model.Product{}, fmt.Errorf("check product exists: %w", err)
	}

	if !exists {
		return model.Product{}, ErrNotFound
	}
	return model.Product{}, ErrInsufficientStock
}

func collectOne(rows pgx.Rows) (model.Product, error) {
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, err
	}
	return row.toModel(), nil
}

// buildProductFilter renders the WHERE clause for filter. Name and sku match
// as substrings with LIKE wildcards in the input taken literally.
func buildProductFilter(filter model.ProductFilter) (string, pgx.NamedArgs) {
	var conds []string
	args := pgx.NamedArgs{}

	if filter.Name != nil {
		conds = append(conds, "name LIKE @name")
		args["name"] = "%" + escapeLike(*filter.Name) + "%"
	}
	if filter.Sku != nil {
		conds = append(conds, "sku LIKE @sku")
		args["sku"] = "%" + escapeLike(*filter.Sku) + "%"
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price >= @min_price")
		args["min_price"] = decimal.NewFromFloat(*filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price <= @max_price")
		args["max_price"] = decimal.NewFromFloat(*filter.MaxPrice)
	}
	if filter.MinStock != nil {
		conds = append(conds, "stock_quantity >= @min_stock")
		args["min_stock"] = *filter.MinStock
	}
	if filter.MaxStock != nil {
		conds = append(conds, "stock_quantity <= @max_stock")
		args["max_stock"] = *filter.MaxStock
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// isOutOfRange reports an integer overflow of the stock_quantity column.
func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == numericValueOutOfRange
}

func toInt32(v int) (int32, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("%w: %d", ErrStockOutOfRange, v)
	}
	return int32(v), nil
}
