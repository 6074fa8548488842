package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/product-management/internal/apperr"
	"github.com/tuanvumaihuynh/product-management/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-management/pkg/validator"
	"github.com/tuanvumaihuynh/product-management/pkg/zerror"
)

func TestNew(t *testing.T) {
	type payload struct {
		Name string `json:"name" validate:"required"`
	}
	validationErr := validator.NewDefaultValidator().Validate(payload{})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
		wantFields []string
	}{
		{
			name:       "not found",
			err:        fmt.Errorf("get: %w", apperr.ProductNotFoundErr),
			wantStatus: http.StatusNotFound,
			wantCode:   apperr.ProductNotFoundCode,
			wantMsg:    "Product not found",
		},
		{
			name:       "duplicate sku",
			err:        apperr.DuplicateSkuErr.WithMsg("Product with SKU 'WM-004' already exists"),
			wantStatus: http.StatusConflict,
			wantCode:   apperr.DuplicateSkuCode,
			wantMsg:    "Product with SKU 'WM-004' already exists",
		},
		{
			name:       "insufficient stock",
			err:        apperr.InsufficientStockErr,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.InsufficientStockCode,
			wantMsg:    "Insufficient stock quantity",
		},
		{
			name:       "validation with details",
			err:        apperr.ValidationErr.WrapParent(validationErr),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.ValidationErrorCode,
			wantMsg:    "Validation failed",
			wantFields: []string{"name"},
		},
		{
			name:       "internal zerror hides message",
			err:        zerror.NewInternalServerError("DB", "pq: relation missing"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
			wantMsg:    "Internal server error",
		},
		{
			name:       "unknown error",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := apierr.New(tt.err)

			assert.False(t, res.Success)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantCode, res.Code)
			assert.Equal(t, tt.wantMsg, res.Error)

			fields := make([]string, 0, len(res.Details))
			for _, d := range res.Details {
				fields = append(fields, d.Field)
			}
			if tt.wantFields == nil {
				assert.Empty(t, fields)
			} else {
				assert.Equal(t, tt.wantFields, fields)
			}
		})
	}
}
