package port

import (
	"context"

	"github.com/nikolayk812/eshop/internal/domain"
)

// CardAuthorizer is the narrow seam for the payment gateway. The only
// implementation today is a simulator mapping sentinel card numbers to
// fixed outcomes, but the checkout workflow never knows that.
type CardAuthorizer interface {
	Authorize(ctx context.Context, cardNumber string) (domain.OrderStatus, error)
}
