package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/nikolayk812/eshop/internal/checkout"
	"github.com/nikolayk812/eshop/internal/domain"
	"github.com/nikolayk812/eshop/internal/payment"
	"github.com/nikolayk812/eshop/internal/repository"
)

type OrdersHandler struct {
	checkout checkout.Service
	logger   *slog.Logger
}

func NewOrdersHandler(checkoutService checkout.Service, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{checkout: checkoutService, logger: logger}
}

type CreateOrderRequestDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`

	CardNumber string               `json:"cardNumber"`
	Items      []CreateOrderItemDTO `json:"items"`

	TotalAmount  *decimal.Decimal `json:"totalAmount"`
	TaxAmount    *decimal.Decimal `json:"taxAmount"`
	ShippingCost *decimal.Decimal `json:"shippingCost"`
}

type CreateOrderItemDTO struct {
	ProductID int64              `json:"productId"`
	Variants  []VariantSelectDTO `json:"variants"`
	Quantity  int32              `json:"quantity"`
}

type VariantSelectDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type CreateOrderResponseDTO struct {
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

type GetOrderRequestDTO struct {
	OrderNumber string `json:"order_number"`
}

type OrderItemResponseDTO struct {
	ProductID    int64           `json:"product_id"`
	VariantName  string          `json:"variant_name"`
	VariantValue string          `json:"variant_value"`
	Quantity     int32           `json:"quantity"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ProductTitle string          `json:"product_title"`
	ProductImage *string         `json:"product_image"`
}

type OrderResponseDTO struct {
	OrderNumber string                 `json:"order_number"`
	Name        string                 `json:"name"`
	Email       string                 `json:"email"`
	Phone       string                 `json:"phone"`
	Address     string                 `json:"address"`
	City        string                 `json:"city"`
	State       string                 `json:"state"`
	ZipCode     string                 `json:"zip_code"`
	TotalPrice  decimal.Decimal        `json:"total_price"`
	Currency    string                 `json:"currency"`
	Status      string                 `json:"status"`
	Items       []OrderItemResponseDTO `json:"items"`
	CreatedAt   time.Time              `json:"created_at"`
}

// POST /v1/orders
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req CreateOrderRequestDTO
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	result, err := h.checkout.PlaceOrder(r.Context(), toCheckoutRequest(req))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, CreateOrderResponseDTO{
		OrderNumber: result.OrderNumber,
		Status:      string(result.Status),
	})
}

// POST /v1/orders/get-order
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req GetOrderRequestDTO
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	order, err := h.checkout.GetOrder(r.Context(), req.OrderNumber)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

// handleError maps workflow errors onto the HTTP taxonomy. Internal
// details are logged, never leaked to the client.
func (h *OrdersHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *checkout.ValidationError

	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, "validation_failed", vErr.Reason)
	case errors.Is(err, payment.ErrInvalidCard):
		respondError(w, http.StatusBadRequest, "invalid_card", "Invalid or unsupported card number")
	case errors.Is(err, repository.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "Product not found")
	case errors.Is(err, repository.ErrVariantNotFound):
		respondError(w, http.StatusNotFound, "variant_not_found", "Variant not found")
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", "Order not found")
	case errors.Is(err, repository.ErrInsufficientStock):
		respondError(w, http.StatusConflict, "insufficient_stock", "Insufficient stock for requested variant")
	default:
		h.logger.Error("order request failed",
			"error", err, "request_id", RequestID(r.Context()))
		respondError(w, http.StatusInternalServerError, "internal_error", "Order processing failed")
	}
}

func toCheckoutRequest(req CreateOrderRequestDTO) checkout.PlaceOrderRequest {
	return checkout.PlaceOrderRequest{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		ZipCode:    req.ZipCode,
		CardNumber: req.CardNumber,
		Items: lo.Map(req.Items, func(item CreateOrderItemDTO, _ int) checkout.OrderItemRequest {
			return checkout.OrderItemRequest{
				ProductID: item.ProductID,
				Variants: lo.Map(item.Variants, func(v VariantSelectDTO, _ int) checkout.VariantSelector {
					return checkout.VariantSelector{Name: v.Name, Value: v.Value}
				}),
				Quantity: item.Quantity,
			}
		}),
		TotalAmount:  req.TotalAmount,
		TaxAmount:    req.TaxAmount,
		ShippingCost: req.ShippingCost,
	}
}

func toOrderDTO(order domain.Order) OrderResponseDTO {
	items := make([]OrderItemResponseDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponseDTO{
			ProductID:    item.ProductID,
			VariantName:  item.VariantName,
			VariantValue: item.VariantValue,
			Quantity:     item.Quantity,
			PricePerItem: item.PricePerItem.Amount,
			Subtotal:     item.Subtotal.Amount,
			ProductTitle: item.ProductTitle,
			ProductImage: item.ProductImage,
		})
	}

	return OrderResponseDTO{
		OrderNumber: order.OrderNumber,
		Name:        order.Name,
		Email:       order.Email,
		Phone:       order.Phone,
		Address:     order.Address,
		City:        order.City,
		State:       order.State,
		ZipCode:     order.ZipCode,
		TotalPrice:  order.TotalPrice.Amount,
		Currency:    order.TotalPrice.Currency.String(),
		Status:      string(order.Status),
		Items:       items,
		CreatedAt:   order.CreatedAt,
	}
}
