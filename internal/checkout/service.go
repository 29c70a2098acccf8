// Package checkout implements the order placement workflow: validation,
// card authorization, variant matching, transactional stock reservation
// with order persistence, and best-effort customer notification.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/nikolayk812/eshop/internal/domain"
	"github.com/nikolayk812/eshop/internal/port"
	"github.com/nikolayk812/eshop/internal/repository"
)

type Service interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResult, error)
	GetOrder(ctx context.Context, orderNumber string) (domain.Order, error)
}

type PlaceOrderResult struct {
	OrderNumber string
	Status      domain.OrderStatus
}

type service struct {
	products   port.ProductRepository
	orders     port.OrderRepository
	tx         port.TxManager
	authorizer port.CardAuthorizer
	notifier   port.Notifier
	logger     *slog.Logger
}

func NewService(
	products port.ProductRepository,
	orders port.OrderRepository,
	tx port.TxManager,
	authorizer port.CardAuthorizer,
	notifier port.Notifier,
	logger *slog.Logger,
) Service {
	return &service{
		products:   products,
		orders:     orders,
		tx:         tx,
		authorizer: authorizer,
		notifier:   notifier,
		logger:     logger,
	}
}

// orderLine pairs an order item with the product and variant rows it was
// resolved against, so the reservation step does not look anything up again.
type orderLine struct {
	item    domain.OrderItem
	product domain.Product
	matched []domain.Variant
}

func (s *service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResult, error) {
	var res PlaceOrderResult

	if err := req.Validate(); err != nil {
		return res, err
	}

	status, err := s.authorizer.Authorize(ctx, req.CardNumber)
	if err != nil {
		return res, fmt.Errorf("authorizer.Authorize: %w", err)
	}

	// All product and variant lookups happen before any mutation, so a
	// missing reference aborts the order with nothing written.
	lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return res, err
	}

	s.checkClientTotals(req, lines)

	order := domain.Order{
		OrderNumber: newOrderNumber(),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		TotalPrice:  domain.NewMoney(*req.TotalAmount),
		Status:      status,
		Items: lo.Map(lines, func(l orderLine, _ int) domain.OrderItem {
			return l.item
		}),
	}

	// Stock is reserved only for approved orders, inside the same
	// transaction that writes the order rows.
	err = s.tx.WithinTx(ctx, func(products port.ProductRepository, orders port.OrderRepository) error {
		if status == domain.OrderStatusApproved {
			for _, line := range lines {
				for _, variant := range line.matched {
					err := products.DecrementVariantStock(ctx, line.product.ID, variant.Name, variant.Value, line.item.Quantity)
					if err != nil {
						return fmt.Errorf("products.DecrementVariantStock: %w", err)
					}
				}
			}
		}

		if _, err := orders.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("orders.InsertOrder: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, fmt.Errorf("tx.WithinTx: %w", err)
	}

	s.notifier.Notify(buildNotification(req, order, lines))

	return PlaceOrderResult{OrderNumber: order.OrderNumber, Status: status}, nil
}

func (s *service) GetOrder(ctx context.Context, orderNumber string) (domain.Order, error) {
	var o domain.Order

	if strings.TrimSpace(orderNumber) == "" {
		return o, NewValidationError("Order number is required")
	}

	order, err := s.orders.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return o, fmt.Errorf("orders.GetOrderByNumber: %w", err)
	}

	return order, nil
}

func (s *service) resolveLines(ctx context.Context, items []OrderItemRequest) ([]orderLine, error) {
	productIDs := lo.Uniq(lo.Map(items, func(it OrderItemRequest, _ int) int64 {
		return it.ProductID
	}))

	productsByID := make(map[int64]domain.Product, len(productIDs))
	for _, id := range productIDs {
		product, err := s.products.GetProduct(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("products.GetProduct: %w", err)
		}
		productsByID[id] = product
	}

	lines := make([]orderLine, 0, len(items))

	for _, it := range items {
		product := productsByID[it.ProductID]

		// Every requested dimension must match a variant row by exact
		// (name, value) equality.
		matched := make([]domain.Variant, 0, len(it.Variants))
		for _, sel := range it.Variants {
			variant, ok := product.FindVariant(sel.Name, sel.Value)
			if !ok {
				return nil, fmt.Errorf("product[%s] variant[%s=%s]: %w",
					product.Title, sel.Name, sel.Value, repository.ErrVariantNotFound)
			}
			matched = append(matched, variant)
		}

		names := lo.Map(it.Variants, func(v VariantSelector, _ int) string { return v.Name })
		values := lo.Map(it.Variants, func(v VariantSelector, _ int) string { return v.Value })

		item := domain.OrderItem{
			ProductID:    product.ID,
			VariantName:  strings.Join(names, domain.VariantSeparator),
			VariantValue: strings.Join(values, domain.VariantSeparator),
			Quantity:     it.Quantity,
			PricePerItem: product.BasePrice,
			Subtotal:     product.BasePrice.Mul(it.Quantity),
		}

		lines = append(lines, orderLine{item: item, product: product, matched: matched})
	}

	return lines, nil
}

// checkClientTotals recomputes the items subtotal from stored prices and
// logs when the client-submitted grand total disagrees with it. Totals are
// still persisted as submitted, matching the storefront contract.
func (s *service) checkClientTotals(req PlaceOrderRequest, lines []orderLine) {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.item.Subtotal.Amount)
	}

	expected := subtotal.Add(*req.TaxAmount).Add(*req.ShippingCost)
	if !expected.Equal(*req.TotalAmount) {
		s.logger.Warn("client total does not match recomputed total",
			"client_total", req.TotalAmount.String(),
			"recomputed_total", expected.String(),
			"items_subtotal", subtotal.String())
	}
}

func buildNotification(req PlaceOrderRequest, order domain.Order, lines []orderLine) domain.OrderNotification {
	products := lo.Map(lines, func(line orderLine, _ int) domain.NotificationProduct {
		image := lo.FromPtr(line.product.Image)
		for _, variant := range line.matched {
			if img := lo.FromPtr(variant.Image); img != "" {
				image = img
				break
			}
		}

		return domain.NotificationProduct{
			Title:    line.product.Title,
			Image:    image,
			Variant:  fmt.Sprintf("%s: %s", line.item.VariantName, line.item.VariantValue),
			Quantity: line.item.Quantity,
			Price:    line.item.PricePerItem,
		}
	})

	return domain.OrderNotification{
		Name:         order.Name,
		Email:        order.Email,
		OrderNumber:  order.OrderNumber,
		Status:       order.Status,
		TotalPrice:   order.TotalPrice,
		TaxAmount:    domain.NewMoney(*req.TaxAmount),
		ShippingCost: domain.NewMoney(*req.ShippingCost),
		Products:     products,
	}
}

// Order numbers only need to be unique and human-quotable, not sortable.
func newOrderNumber() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}
