package port

import (
	"context"

	"github.com/nikolayk812/eshop/internal/domain"
)

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)

	CreateProduct(ctx context.Context, product domain.Product) (int64, error)

	// DecrementVariantStock atomically decrements the stock of the
	// (productID, name, value) variant row by quantity. It fails with
	// repository.ErrInsufficientStock when the current stock is lower than
	// quantity and with repository.ErrVariantNotFound when no such row exists.
	DecrementVariantStock(ctx context.Context, productID int64, name, value string, quantity int32) error
}
