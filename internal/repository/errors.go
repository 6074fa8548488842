package repository

import "errors"

var (
	ErrNotFound          = errors.New("product not found")
	ErrDuplicateSku      = errors.New("duplicate sku")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStockOutOfRange   = errors.New("stock quantity out of range")
)
