package port

import (
	"context"

	"github.com/nikolayk812/eshop/internal/domain"
)

type OrderRepository interface {
	// InsertOrder writes the order header and all its items as a single
	// atomic unit and returns the generated row id.
	InsertOrder(ctx context.Context, order domain.Order) (int64, error)

	// GetOrderByNumber returns the order joined with its items, each item
	// annotated with the referenced product's title and image.
	GetOrderByNumber(ctx context.Context, orderNumber string) (domain.Order, error)
}
