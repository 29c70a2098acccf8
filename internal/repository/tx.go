package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikolayk812/eshop/internal/port"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so a
// repository works the same whether it owns its transactions or joins one.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// withTx executes fn within a transaction if the repository was created with a pool,
// or uses the existing transaction if the repository was created with a transaction
func withTx[T any](ctx context.Context, dbtx DBTX, fn func(tx pgx.Tx) (T, error)) (_ T, txErr error) {
	var zero T

	// Check if we're already in a transaction by trying to cast to pgx.Tx
	if tx, ok := dbtx.(pgx.Tx); ok {
		// Already in a transaction, just use it
		return fn(tx)
	}

	// Must be a pool, create a new transaction
	pool, ok := dbtx.(*pgxpool.Pool)
	if !ok {
		return zero, fmt.Errorf("dbtx is neither pgx.Tx nor *pgxpool.Pool: %T", dbtx)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return zero, err
	}

	// Ensure proper rollback handling
	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	result, err := fn(tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, err
	}

	return result, nil
}

type txManager struct {
	pool *pgxpool.Pool
}

// NewTxManager returns a port.TxManager which hands fn repositories bound
// to one transaction, so the stock decrement and the order write commit or
// roll back together.
func NewTxManager(pool *pgxpool.Pool) port.TxManager {
	return txManager{pool: pool}
}

func (m txManager) WithinTx(ctx context.Context, fn func(products port.ProductRepository, orders port.OrderRepository) error) error {
	_, err := withTx(ctx, m.pool, func(tx pgx.Tx) (struct{}, error) {
		return struct{}{}, fn(NewProductWithTx(tx), NewOrderWithTx(tx))
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}
