package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/nikolayk812/eshop/internal/domain"
	"github.com/nikolayk812/eshop/internal/port"
	"github.com/nikolayk812/eshop/internal/repository"
)

type ProductsHandler struct {
	products port.ProductRepository
	logger   *slog.Logger
}

func NewProductsHandler(products port.ProductRepository, logger *slog.Logger) *ProductsHandler {
	return &ProductsHandler{products: products, logger: logger}
}

type VariantDTO struct {
	Name  string          `json:"name"`
	Value string          `json:"value"`
	Price decimal.Decimal `json:"price"`
	Stock int32           `json:"stock"`
	Image *string         `json:"image"`
}

type ProductResponseDTO struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Currency    string          `json:"currency"`
	Image       *string         `json:"image"`
	Variants    []VariantDTO    `json:"variants"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type CreateProductRequestDTO struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	BasePrice   *decimal.Decimal          `json:"base_price"`
	Image       *string                   `json:"image"`
	Variants    []CreateVariantRequestDTO `json:"variants"`
}

type CreateVariantRequestDTO struct {
	Name  string          `json:"name"`
	Value string          `json:"value"`
	Price decimal.Decimal `json:"price"`
	Stock int32           `json:"stock"`
	Image *string         `json:"image"`
}

// GET /v1/products
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch products")
		return
	}

	dtos := make([]ProductResponseDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GET /v1/products/{id}
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "Product id must be a positive integer")
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "Product not found")
			return
		}
		h.logger.Error("failed to get product", "product_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch product")
		return
	}

	respondJSON(w, http.StatusOK, toProductDTO(product))
}

// POST /v1/products
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req CreateProductRequestDTO
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if req.Title == "" || req.BasePrice == nil || len(req.Variants) == 0 {
		respondError(w, http.StatusBadRequest, "missing_fields", "Missing required fields: title, base_price, variants")
		return
	}

	product := domain.Product{
		Title:       req.Title,
		Description: req.Description,
		BasePrice:   domain.NewMoney(*req.BasePrice),
		Image:       req.Image,
		Variants: lo.Map(req.Variants, func(v CreateVariantRequestDTO, _ int) domain.Variant {
			return domain.Variant{
				Name:  v.Name,
				Value: v.Value,
				Price: domain.NewMoney(v.Price),
				Stock: v.Stock,
				Image: v.Image,
			}
		}),
	}

	id, err := h.products.CreateProduct(r.Context(), product)
	if err != nil {
		h.logger.Error("failed to create product", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to create product")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":      id,
		"message": "Product created successfully",
	})
}

func toProductDTO(p domain.Product) ProductResponseDTO {
	variants := make([]VariantDTO, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, VariantDTO{
			Name:  v.Name,
			Value: v.Value,
			Price: v.Price.Amount,
			Stock: v.Stock,
			Image: v.Image,
		})
	}

	return ProductResponseDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		BasePrice:   p.BasePrice.Amount,
		Currency:    p.BasePrice.Currency.String(),
		Image:       p.Image,
		Variants:    variants,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
