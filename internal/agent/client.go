package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/product-management/pkg/correlationid"
	"github.com/tuanvumaihuynh/product-management/pkg/ptr"
)

var tracer = otel.Tracer("internal/agent")

// Product is the product as the REST API returns it. Requests send prices as
// JSON numbers; responses are read into a decimal for exact rendering.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Sku           string          `json:"sku"`
	StockQuantity int             `json:"stockQuantity"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type ProductPage struct {
	Products   []Product
	Pagination Pagination
}

type CreateProductRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Sku           string  `json:"sku"`
	StockQuantity *int    `json:"stockQuantity,omitempty"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Sku           *string  `json:"sku,omitempty"`
	StockQuantity *int     `json:"stockQuantity,omitempty"`
}

// IsEmpty reports whether no field is set.
func (r UpdateProductRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Price == nil && r.Sku == nil && r.StockQuantity == nil
}

type ListProductsFilter struct {
	Name     *string
	Sku      *string
	MinPrice *float64
	MaxPrice *float64
	MinStock *int
	MaxStock *int
	Limit    *int
	Offset   *int
}

// APIError is a non-2xx answer from the REST API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return "API Error: " + e.Message
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Pagination *Pagination     `json:"pagination"`
}

// Client calls the product REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the API rooted at baseURL, e.g. http://localhost:3000/api.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateProduct(ctx context.Context, req CreateProductRequest) (Product, error) {
	var p Product
	_, err := c.do(ctx, http.MethodPost, "/products", nil, req, &p)
	return p, err
}

func (c *Client) ListProducts(ctx context.Context, filter ListProductsFilter) (ProductPage, error) {
	query, err := filter.query()
	if err != nil {
		return ProductPage{}, err
	}

	var products []Product
	env, err := c.do(ctx, http.MethodGet, "/products", query, nil, &products)
	if err != nil {
		return ProductPage{}, err
	}

	page := ProductPage{Products: products}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	} else {
		page.Pagination = Pagination{Total: len(products), Limit: len(products)}
	}
	return page, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	_, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &p)
	return p, err
}

func (c *Client) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (Product, error) {
	var p Product
	_, err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), nil, req, &p)
	return p, err
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, nil)
	return err
}

func (c *Client) AdjustStock(ctx context.Context, id string, quantity int) (Product, error) {
	var p Product
	body := struct {
		Quantity int `json:"quantity"`
	}{Quantity: quantity}
	_, err := c.do(ctx, http.MethodPatch, "/products/"+url.PathEscape(id)+"/stock", nil, body, &p)
	return p, err
}

func (f ListProductsFilter) query() (url.Values, error) {
	values := url.Values{}
	params := []struct {
		name  string
		value any
		set   bool
	}{
		{"name", ptr.Deref(f.Name), f.Name != nil && *f.Name != ""},
		{"sku", ptr.Deref(f.Sku), f.Sku != nil && *f.Sku != ""},
		{"minPrice", ptr.Deref(f.MinPrice), f.MinPrice != nil},
		{"maxPrice", ptr.Deref(f.MaxPrice), f.MaxPrice != nil},
		{"minStock", ptr.Deref(f.MinStock), f.MinStock != nil},
		{"maxStock", ptr.Deref(f.MaxStock), f.MaxStock != nil},
		{"limit", ptr.Deref(f.Limit), f.Limit != nil},
		{"offset", ptr.Deref(f.Offset), f.Offset != nil},
	}

	for _, p := range params {
		if !p.set {
			continue
		}
		frag, err := runtime.StyleParamWithLocation("form", true, p.name, runtime.ParamLocationQuery, p.value)
		if err != nil {
			return nil, fmt.Errorf("encode query parameter %s: %w", p.name, err)
		}
		parsed, err := url.ParseQuery(frag)
		if err != nil {
			return nil, fmt.Errorf("parse query parameter %s: %w", p.name, err)
		}
		for k, vs := range parsed {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
	}
	return values, nil
}

// do sends one request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (envelope, error) {
	ctx, span := tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	env, err := c.send(ctx, method, path, query, body, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return env, err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any) (envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return envelope{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := correlationid.FromContext(ctx); ok {
		req.Header.Set(correlationid.Header, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("call product api: %w", err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusNoContent {
		return envelope{Success: true}, nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return envelope{}, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return envelope{}, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return env, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env, fmt.Errorf("decode response data: %w", err)
		}
	}
	return env, nil
}
