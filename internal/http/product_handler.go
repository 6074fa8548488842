package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/product-management/internal/apperr"
	"github.com/tuanvumaihuynh/product-management/internal/model"
	"github.com/tuanvumaihuynh/product-management/internal/service"
)

// response is the success form of the envelope.
type response[T any] struct {
	Success    bool              `json:"success"`
	Data       T                 `json:"data"`
	Message    string            `json:"message,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
}

const defaultMaxBodyBytes = 1 << 20

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

type productHandler struct {
	s          *Service
	productSvc service.ProductService
}

func newProductHandler(s *Service) *productHandler {
	return &productHandler{
		s:          s,
		productSvc: s.productSvc,
	}
}

func (h *productHandler) register(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handle(h.ListProducts))
		r.Post("/", h.handle(h.CreateProduct))
		r.Get("/{id}", h.handle(h.GetProduct))
		r.Put("/{id}", h.handle(h.UpdateProduct))
		r.Delete("/{id}", h.handle(h.DeleteProduct))
		r.Patch("/{id}/stock", h.handle(h.AdjustStock))
	})
}

func (h *productHandler) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.s.handleResponseError(w, r, err)
		}
	}
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	params, err := bindListProductsParams(r)
	if err != nil {
		return err
	}

	page, err := h.productSvc.ListProducts(r.Context(), params)
	if err != nil {
		return fmt.Errorf("product service list products: %w", err)
	}

	items := page.Items
	if items == nil {
		items = []model.Product{}
	}

	h.s.writeJSON(w, r, http.StatusOK, response[[]model.Product]{
		Success:    true,
		Data:       items,
		Pagination: &page.Pagination,
	})
	return nil
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productID(r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service get product: %w", err)
	}
	if product == nil {
		return apperr.ProductNotFoundErr
	}

	h.s.writeJSON(w, r, http.StatusOK, response[model.Product]{Success: true, Data: *product})
	return nil
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	var params service.CreateProductParams
	if err := h.decodeJSON(w, r, &params); err != nil {
		return err
	}

	product, err := h.productSvc.CreateProduct(r.Context(), params)
	if err != nil {
		return fmt.Errorf("product service create product: %w", err)
	}

	h.s.writeJSON(w, r, http.StatusCreated, response[model.Product]{
		Success: true,
		Data:    product,
		Message: "Product created successfully",
	})
	return nil
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productID(r)
	if err != nil {
		return err
	}

	var params service.UpdateProductParams
	if err := h.decodeJSON(w, r, &params); err != nil {
		return err
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), id, params)
	if err != nil {
		return fmt.Errorf("product service update product: %w", err)
	}

	h.s.writeJSON(w, r, http.StatusOK, response[model.Product]{
		Success: true,
		Data:    product,
		Message: "Product updated successfully",
	})
	return nil
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productID(r)
	if err != nil {
		return err
	}

	if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
		return fmt.Errorf("product service delete product: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *productHandler) AdjustStock(w http.ResponseWriter, r *http.Request) error {
	id, err := productID(r)
	if err != nil {
		return err
	}

	var params service.AdjustStockParams
	if err := h.decodeJSON(w, r, &params); err != nil {
		return err
	}

	product, err := h.productSvc.AdjustStock(r.Context(), id, params)
	if err != nil {
		return fmt.Errorf("product service adjust stock: %w", err)
	}

	h.s.writeJSON(w, r, http.StatusOK, response[model.Product]{
		Success: true,
		Data:    product,
		Message: "Stock updated successfully",
	})
	return nil
}

func productID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.ValidationErr.WithMsg("Invalid product ID format").WrapParent(err)
	}
	return id, nil
}

func bindListProductsParams(r *http.Request) (service.ListProductsParams, error) {
	var params service.ListProductsParams
	query := r.URL.Query()

	binds := []struct {
		name string
		dest any
	}{
		{"name", &params.Name},
		{"sku", &params.Sku},
		{"minPrice", &params.MinPrice},
		{"maxPrice", &params.MaxPrice},
		{"minStock", &params.MinStock},
		{"maxStock", &params.MaxStock},
		{"limit", &params.Limit},
		{"offset", &params.Offset},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			return params, apperr.ValidationErr.
				WithMsg(fmt.Sprintf("Invalid query parameter '%s'", b.name)).
				WrapParent(err)
		}
	}

	return params, nil
}

// decodeJSON reads exactly one JSON value from a size-capped body into dst.
func (h *productHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	limit := h.s.cfg.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)

	if err := dec.Decode(dst); err != nil {
		var (
			typeErr     *json.UnmarshalTypeError
			maxBytesErr *http.MaxBytesError
		)
		switch {
		case errors.Is(err, io.EOF):
			return apperr.ValidationErr.WithMsg("Request body is required")
		case errors.As(err, &maxBytesErr):
			return apperr.ValidationErr.WithMsg("Request body too large").WrapParent(err)
		case errors.As(err, &typeErr):
			return apperr.ValidationErr.
				WithMsg(fmt.Sprintf("Invalid value for field '%s'", typeErr.Field)).
				WrapParent(err)
		default:
			return apperr.ValidationErr.WithMsg("Invalid JSON body").WrapParent(err)
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperr.ValidationErr.WithMsg("Request body must contain a single JSON value")
	}

	return nil
}
