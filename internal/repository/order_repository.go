package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/nikolayk812/eshop/internal/domain"
	"github.com/nikolayk812/eshop/internal/port"
)

var ErrOrderNotFound = errors.New("order not found")

type orderRepository struct {
	db DBTX
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{db: pool}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	if order.OrderNumber == "" {
		return 0, errors.New("order number is empty")
	}
	if len(order.Items) == 0 {
		return 0, errors.New("no items in order")
	}

	orderID, err := withTx(ctx, r.db, func(tx pgx.Tx) (int64, error) {
		var id int64

		err := tx.QueryRow(ctx,
			`INSERT INTO orders (order_number, name, email, phone, address, city, state, zip_code, total_price, currency, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING id`,
			order.OrderNumber,
			order.Name,
			order.Email,
			order.Phone,
			order.Address,
			order.City,
			order.State,
			order.ZipCode,
			order.TotalPrice.Amount,
			order.TotalPrice.Currency.String(),
			string(order.Status),
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert order: %w", err)
		}

		// TODO: batch with pgx.Batch once order sizes warrant it
		for _, item := range order.Items {
			subtotal := item.PricePerItem.Mul(item.Quantity)

			_, err := tx.Exec(ctx,
				`INSERT INTO order_items (order_id, product_id, variant_name, variant_value, quantity, price_per_item, subtotal)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				id,
				item.ProductID,
				item.VariantName,
				item.VariantValue,
				item.Quantity,
				item.PricePerItem.Amount,
				subtotal.Amount)
			if err != nil {
				return 0, fmt.Errorf("insert order item[product=%d]: %w", item.ProductID, err)
			}
		}

		return id, nil
	})
	if err != nil {
		return 0, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

func (r *orderRepository) GetOrderByNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	var o domain.Order

	if orderNumber == "" {
		return o, errors.New("order number is empty")
	}

	var (
		amount       decimal.Decimal
		currencyCode string
		status       string
	)

	err := r.db.QueryRow(ctx,
		`SELECT id, order_number, name, email, phone, address, city, state, zip_code, total_price, currency, status, created_at
		 FROM orders
		 WHERE order_number = $1`, orderNumber).
		Scan(&o.ID, &o.OrderNumber, &o.Name, &o.Email, &o.Phone, &o.Address, &o.City, &o.State, &o.ZipCode,
			&amount, &currencyCode, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("order[%s]: %w", orderNumber, ErrOrderNotFound)
		}
		return o, fmt.Errorf("query order: %w", err)
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}
	o.TotalPrice = domain.Money{Amount: amount, Currency: parsedCurrency}

	o.Status, err = domain.ToOrderStatus(status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT oi.product_id, oi.variant_name, oi.variant_value, oi.quantity, oi.price_per_item, oi.subtotal,
		        p.title, p.image
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1
		 ORDER BY oi.id`, o.ID)
	if err != nil {
		return o, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItem(rows, parsedCurrency)
		if err != nil {
			return o, fmt.Errorf("scanOrderItem: %w", err)
		}

		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return o, fmt.Errorf("rows.Err: %w", err)
	}

	return o, nil
}

func scanOrderItem(row pgx.Row, unit currency.Unit) (domain.OrderItem, error) {
	var (
		item     domain.OrderItem
		price    decimal.Decimal
		subtotal decimal.Decimal
	)

	err := row.Scan(&item.ProductID, &item.VariantName, &item.VariantValue, &item.Quantity,
		&price, &subtotal, &item.ProductTitle, &item.ProductImage)
	if err != nil {
		return item, err
	}

	item.PricePerItem = domain.Money{Amount: price, Currency: unit}
	item.Subtotal = domain.Money{Amount: subtotal, Currency: unit}

	return item, nil
}
