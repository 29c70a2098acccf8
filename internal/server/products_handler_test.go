package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolayk812/eshop/internal/domain"
	"github.com/nikolayk812/eshop/internal/repository"
	"github.com/nikolayk812/eshop/internal/server"
)

type productRepoStub struct {
	products []domain.Product

	listErr   error
	createErr error

	created []domain.Product
}

func (s *productRepoStub) ListProducts(_ context.Context) ([]domain.Product, error) {
	return s.products, s.listErr
}

func (s *productRepoStub) GetProduct(_ context.Context, productID int64) (domain.Product, error) {
	for _, p := range s.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product[%d]: %w", productID, repository.ErrProductNotFound)
}

func (s *productRepoStub) CreateProduct(_ context.Context, product domain.Product) (int64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.created = append(s.created, product)
	return int64(len(s.created)), nil
}

func (s *productRepoStub) DecrementVariantStock(_ context.Context, _ int64, _, _ string, _ int32) error {
	return nil
}

func stubProduct() domain.Product {
	return domain.Product{
		ID:          1,
		Title:       "Linen Shirt",
		Description: "A shirt",
		BasePrice:   domain.NewMoney(decimal.NewFromInt(500)),
		Image:       lo.ToPtr("https://img.example/shirt.jpg"),
		Variants: []domain.Variant{
			{Name: "color", Value: "red", Price: domain.NewMoney(decimal.NewFromInt(500)), Stock: 10},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestListProducts(t *testing.T) {
	router := newTestRouter(&checkoutServiceStub{}, &productRepoStub{
		products: []domain.Product{stubProduct()},
	})

	rec := doRequest(t, router, http.MethodGet, "/v1/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []server.ProductResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp, 1)
	assert.Equal(t, "Linen Shirt", resp[0].Title)
	assert.Equal(t, "INR", resp[0].Currency)
	require.Len(t, resp[0].Variants, 1)
	assert.Equal(t, int32(10), resp[0].Variants[0].Stock)
}

// An empty catalog must serialize as [], not null.
func TestListProductsEmpty(t *testing.T) {
	router := newTestRouter(&checkoutServiceStub{}, &productRepoStub{})

	rec := doRequest(t, router, http.MethodGet, "/v1/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetProduct(t *testing.T) {
	router := newTestRouter(&checkoutServiceStub{}, &productRepoStub{
		products: []domain.Product{stubProduct()},
	})

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{name: "existing product", target: "/v1/products/1", wantStatus: http.StatusOK},
		{name: "unknown product", target: "/v1/products/42", wantStatus: http.StatusNotFound},
		{name: "non-numeric id", target: "/v1/products/abc", wantStatus: http.StatusBadRequest},
		{name: "negative id", target: "/v1/products/-1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCreateProduct(t *testing.T) {
	repo := &productRepoStub{}
	router := newTestRouter(&checkoutServiceStub{}, repo)

	body := `{
		"title": "Linen Shirt",
		"description": "A shirt",
		"base_price": 500,
		"variants": [
			{"name": "color", "value": "red", "price": 500, "stock": 10}
		]
	}`

	rec := doRequest(t, router, http.MethodPost, "/v1/products", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Product created successfully", resp["message"])
	assert.EqualValues(t, 1, resp["id"])

	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.Equal(t, "Linen Shirt", created.Title)
	assert.True(t, created.BasePrice.Amount.Equal(decimal.NewFromInt(500)))
	require.Len(t, created.Variants, 1)
	assert.Equal(t, int32(10), created.Variants[0].Stock)
}

func TestCreateProductValidation(t *testing.T) {
	router := newTestRouter(&checkoutServiceStub{}, &productRepoStub{})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"base_price": 500, "variants": [{"name": "c", "value": "r"}]}`},
		{name: "missing base price", body: `{"title": "Shirt", "variants": [{"name": "c", "value": "r"}]}`},
		{name: "no variants", body: `{"title": "Shirt", "base_price": 500}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/v1/products", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp server.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Missing required fields: title, base_price, variants", resp.Error)
		})
	}
}

func TestCreateProductUnknownField(t *testing.T) {
	router := newTestRouter(&checkoutServiceStub{}, &productRepoStub{})

	rec := doRequest(t, router, http.MethodPost, "/v1/products", `{"title": "x", "sku": "y"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid JSON body", resp.Error)
}
