package agent

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tuanvumaihuynh/product-management/pkg/ptr"
)

const (
	ServerName    = "Product Management"
	ServerVersion = "0.1.0"
)

// ProductAPI is what the tools need from the REST API. [Client] satisfies it.
type ProductAPI interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (Product, error)
	ListProducts(ctx context.Context, filter ListProductsFilter) (ProductPage, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, quantity int) (Product, error)
}

type tools struct {
	api    ProductAPI
	logger *slog.Logger
}

// NewServer registers the product tools on a new MCP server. Tool failures are
// rendered into the result text and never returned as protocol errors.
func NewServer(api ProductAPI, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	t := &tools{
		api:    api,
		logger: logger.With(slog.String("service", "agent")),
	}

	s.AddTool(createProductTool, t.createProduct)
	s.AddTool(getProductsTool, t.getProducts)
	s.AddTool(getProductByIDTool, t.getProductByID)
	s.AddTool(updateProductTool, t.updateProduct)
	s.AddTool(deleteProductTool, t.deleteProduct)
	s.AddTool(updateProductStockTool, t.updateProductStock)

	return s
}

var (
	createProductTool = mcp.NewTool("create_product",
		mcp.WithTitleAnnotation("Create Product"),
		mcp.WithDescription("Create a new product in the inventory"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Product name")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Product description")),
		mcp.WithNumber("price", mcp.Required(), mcp.Min(0), mcp.Description("Product price")),
		mcp.WithString("sku", mcp.Required(), mcp.Description("Product SKU (unique identifier)")),
		mcp.WithNumber("stockQuantity", mcp.Min(0), mcp.Description("Initial stock quantity (default: 0)")),
	)

	getProductsTool = mcp.NewTool("get_products",
		mcp.WithTitleAnnotation("Get Products"),
		mcp.WithDescription("Retrieve products from inventory with optional filtering"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("name", mcp.Description("Filter by product name (partial match)")),
		mcp.WithString("sku", mcp.Description("Filter by SKU (partial match)")),
		mcp.WithNumber("minPrice", mcp.Min(0), mcp.Description("Minimum price filter")),
		mcp.WithNumber("maxPrice", mcp.Min(0), mcp.Description("Maximum price filter")),
		mcp.WithNumber("minStock", mcp.Min(0), mcp.Description("Minimum stock quantity")),
		mcp.WithNumber("maxStock", mcp.Min(0), mcp.Description("Maximum stock quantity")),
		mcp.WithNumber("limit", mcp.Min(1), mcp.Max(100), mcp.Description("Number of products to return (max 100)")),
		mcp.WithNumber("offset", mcp.Min(0), mcp.Description("Number of products to skip")),
	)

	getProductByIDTool = mcp.NewTool("get_product_by_id",
		mcp.WithTitleAnnotation("Get Product by ID"),
		mcp.WithDescription("Retrieve a specific product by its ID"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("id", mcp.Required(), mcp.Description("Product ID (UUID)")),
	)

	updateProductTool = mcp.NewTool("update_product",
		mcp.WithTitleAnnotation("Update Product"),
		mcp.WithDescription("Update an existing product's information"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Product ID (UUID)")),
		mcp.WithString("name", mcp.Description("New product name")),
		mcp.WithString("description", mcp.Description("New product description")),
		mcp.WithNumber("price", mcp.Min(0), mcp.Description("New product price")),
		mcp.WithString("sku", mcp.Description("New product SKU")),
		mcp.WithNumber("stockQuantity", mcp.Min(0), mcp.Description("New stock quantity")),
	)

	deleteProductTool = mcp.NewTool("delete_product",
		mcp.WithTitleAnnotation("Delete Product"),
		mcp.WithDescription("Delete a product from the inventory"),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("id", mcp.Required(), mcp.Description("Product ID (UUID)")),
	)

	updateProductStockTool = mcp.NewTool("update_product_stock",
		mcp.WithTitleAnnotation("Update Product Stock"),
		mcp.WithDescription("Add or subtract stock quantity for a product"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Product ID (UUID)")),
		mcp.WithNumber("quantity", mcp.Required(), mcp.Description("Quantity to add (positive) or subtract (negative)")),
	)
)

func (t *tools) createProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const verb = "creating product"
	args := arguments(request.GetArguments())

	var (
		req CreateProductRequest
		err error
	)
	if req.Name, err = args.requiredString("name"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if req.Description, err = args.requiredString("description"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if req.Price, err = args.requiredNumber("price"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if req.Sku, err = args.requiredString("sku"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if req.StockQuantity, err = args.optInt("stockQuantity"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if req.StockQuantity == nil {
		req.StockQuantity = ptr.New(0)
	}

	product, err := t.api.CreateProduct(ctx, req)
	if err != nil {
		return t.fail(ctx, request, verb, err)
	}
	return mcp.NewToolResultText(renderCreated(product)), nil
}

func (t *tools) getProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const verb = "retrieving products"
	args := arguments(request.GetArguments())

	var (
		filter ListProductsFilter
		err    error
	)
	if filter.Name, err = args.optString("name"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if filter.Sku, err = args.optString("sku"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if filter.MinPrice, err = args.optNumber("minPrice"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if filter.MaxPrice, err = args.optNumber("maxPrice"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if filter.MinStock, err = args.optInt("minStock"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if filter.MaxStock, err = args.optInt("maxStock"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if filter.Limit, err = args.optInt("limit"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if filter.Offset, err = args.optInt("offset"); err != nil {
		return t.fail(ctx, request, verb, err)
	}

	page, err := t.api.ListProducts(ctx, filter)
	if err != nil {
		return t.fail(ctx, request, verb, err)
	}
	return mcp.NewToolResultText(renderList(page)), nil
}

func (t *tools) getProductByID(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const verb = "retrieving product"

	id, err := arguments(request.GetArguments()).requiredString("id")
	if err != nil {
		return t.fail(ctx, request, verb, err)
	}

	product, err := t.api.GetProduct(ctx, id)
	if err != nil {
		return t.fail(ctx, request, verb, err)
	}
	return mcp.NewToolResultText(renderDetails(product)), nil
}

func (t *tools) updateProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const verb = "updating product"
	args := arguments(request.GetArguments())

	id, err := args.requiredString("id")
	if err != nil {
		return t.fail(ctx, request, verb, err)
	}

	var req UpdateProductRequest
	if req.Name, err = args.optString("name"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if req.Description, err = args.optString("description"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if req.Price, err = args.optNumber("price"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if req.Sku, err = args.optString("sku"); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	if req.StockQuantity, err = args.optInt("stockQuantity"); err != nil {
		return t.fail(ctx, request, verb, err)
	}

	if req.IsEmpty() {
		return mcp.NewToolResultText(noUpdateFieldsText), nil
	}

	product, err := t.api.UpdateProduct(ctx, id, req)
	if err != nil {
		return t.fail(ctx, request, verb, err)
	}
	return mcp.NewToolResultText(renderUpdated(product)), nil
}

func (t *tools) deleteProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const verb = "deleting product"

	id, err := arguments(request.GetArguments()).requiredString("id")
	if err != nil {
		return t.fail(ctx, request, verb, err)
	}

	if err := t.api.DeleteProduct(ctx, id); err != nil {
		return t.fail(ctx, request, verb, err)
	}
	return mcp.NewToolResultText(renderDeleted(id)), nil
}

func (t *tools) updateProductStock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const verb = "updating stock"
	args := arguments(request.GetArguments())

	id, err := args.requiredString("id")
	if err != nil {
		return t.fail(ctx, request, verb, err)
	}
	quantity, err := args.requiredInt("quantity")
	if err != nil {
		return t.fail(ctx, request, verb, err)
	}

	product, err := t.api.AdjustStock(ctx, id, quantity)
	if err != nil {
		return t.fail(ctx, request, verb, err)
	}
	return mcp.NewToolResultText(renderStockAdjusted(product, quantity)), nil
}

func (t *tools) fail(ctx context.Context, request mcp.CallToolRequest, verb string, err error) (*mcp.CallToolResult, error) {
	t.logger.WarnContext(ctx, "tool call failed",
		slog.String("tool", request.Params.Name),
		slog.Any("error", err))
	return mcp.NewToolResultError(renderError(verb, err)), nil
}
