package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/product-management/pkg/zerror"
)

func TestZErrorIs(t *testing.T) {
	notFound := zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")
	conflict := zerror.NewConflict("DUPLICATE_SKU", "duplicate sku")

	t.Run("Should match after wrapping", func(t *testing.T) {
		err := fmt.Errorf("get product: %w", notFound.WrapParent(errors.New("no rows")))
		assert.ErrorIs(t, err, notFound)
		assert.NotErrorIs(t, err, conflict)
	})

	t.Run("Should match after message override", func(t *testing.T) {
		err := conflict.WithMsg("Product with SKU 'A' already exists")
		assert.ErrorIs(t, err, conflict)
		assert.Equal(t, "Product with SKU 'A' already exists", err.Msg())
	})

	t.Run("Should expose parent through errors.As", func(t *testing.T) {
		parent := errors.New("boom")
		err := fmt.Errorf("wrapped: %w", zerror.NewInternalServerError("INTERNAL", "internal").WrapParent(parent))

		var zErr zerror.ZError
		assert.True(t, errors.As(err, &zErr))
		assert.Equal(t, zerror.StatusInternalServerError, zErr.Status())
		assert.ErrorIs(t, err, parent)
	})
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", zerror.StatusNotFound.String())
	assert.Equal(t, "UNKNOWN", zerror.Status(200).String())
}

func TestZErrorError(t *testing.T) {
	err := zerror.NewNotFound("PRODUCT_NOT_FOUND", "Product not found")
	assert.Equal(t, "PRODUCT_NOT_FOUND [NOT_FOUND]: Product not found", err.Error())

	wrapped := err.WrapParent(errors.New("no rows in result set"))
	assert.Equal(t, "PRODUCT_NOT_FOUND [NOT_FOUND]: Product not found: no rows in result set", wrapped.Error())
	assert.Equal(t, err, err.WrapParent(nil))
}
