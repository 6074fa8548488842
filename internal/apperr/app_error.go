package apperr

import "github.com/tuanvumaihuynh/product-management/pkg/zerror"

const (
	ValidationErrorCode   = "VALIDATION_FAILED"
	ProductNotFoundCode   = "PRODUCT_NOT_FOUND"
	DuplicateSkuCode      = "DUPLICATE_SKU"
	InsufficientStockCode = "INSUFFICIENT_STOCK"
	InternalErrorCode     = "INTERNAL"
)

var (
	ValidationErr        = zerror.NewValidationFailed(ValidationErrorCode, "Validation failed")
	ProductNotFoundErr   = zerror.NewNotFound(ProductNotFoundCode, "Product not found")
	DuplicateSkuErr      = zerror.NewConflict(DuplicateSkuCode, "Product with this SKU already exists")
	InsufficientStockErr = zerror.NewBadRequest(InsufficientStockCode, "Insufficient stock quantity")
	InternalErr          = zerror.NewInternalServerError(InternalErrorCode, "Internal server error")
)
