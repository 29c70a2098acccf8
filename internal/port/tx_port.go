package port

import "context"

// TxManager runs fn with repositories bound to a single database
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise, so a stock decrement and the order write either both land
// or neither does.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(products ProductRepository, orders OrderRepository) error) error
}
