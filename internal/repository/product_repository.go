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

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type productRepository struct {
	db DBTX
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{db: pool}
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, description, base_price, currency, image, created_at, updated_at
		 FROM products
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	index := make(map[int64]int)

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanProduct: %w", err)
		}

		index[product.ID] = len(products)
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	variantRows, err := r.db.Query(ctx,
		`SELECT product_id, variant_name, variant_value, price, stock, image
		 FROM product_variants
		 ORDER BY product_id, id`)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer variantRows.Close()

	for variantRows.Next() {
		var productID int64

		variant, err := scanVariant(variantRows, &productID)
		if err != nil {
			return nil, fmt.Errorf("scanVariant: %w", err)
		}

		if i, ok := index[productID]; ok {
			variant.Price.Currency = products[i].BasePrice.Currency
			products[i].Variants = append(products[i].Variants, variant)
		}
	}
	if err := variantRows.Err(); err != nil {
		return nil, fmt.Errorf("variantRows.Err: %w", err)
	}

	return products, nil
}

func (r *productRepository) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	var p domain.Product

	row := r.db.QueryRow(ctx,
		`SELECT id, title, description, base_price, currency, image, created_at, updated_at
		 FROM products
		 WHERE id = $1`, productID)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("product[%d]: %w", productID, ErrProductNotFound)
		}
		return p, fmt.Errorf("scanProduct: %w", err)
	}

	variantRows, err := r.db.Query(ctx,
		`SELECT product_id, variant_name, variant_value, price, stock, image
		 FROM product_variants
		 WHERE product_id = $1
		 ORDER BY id`, productID)
	if err != nil {
		return p, fmt.Errorf("query variants: %w", err)
	}
	defer variantRows.Close()

	for variantRows.Next() {
		var ownerID int64

		variant, err := scanVariant(variantRows, &ownerID)
		if err != nil {
			return p, fmt.Errorf("scanVariant: %w", err)
		}

		variant.Price.Currency = product.BasePrice.Currency
		product.Variants = append(product.Variants, variant)
	}
	if err := variantRows.Err(); err != nil {
		return p, fmt.Errorf("variantRows.Err: %w", err)
	}

	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product domain.Product) (int64, error) {
	if product.Title == "" {
		return 0, errors.New("product title is empty")
	}
	if product.BasePrice.IsNegative() {
		return 0, errors.New("product base price is negative")
	}
	if len(product.Variants) == 0 {
		return 0, errors.New("no variants in product")
	}

	productID, err := withTx(ctx, r.db, func(tx pgx.Tx) (int64, error) {
		var id int64

		err := tx.QueryRow(ctx,
			`INSERT INTO products (title, description, base_price, currency, image)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			product.Title,
			product.Description,
			product.BasePrice.Amount,
			product.BasePrice.Currency.String(),
			product.Image,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert product: %w", err)
		}

		for _, v := range product.Variants {
			_, err := tx.Exec(ctx,
				`INSERT INTO product_variants (product_id, variant_name, variant_value, price, stock, image)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				id, v.Name, v.Value, v.Price.Amount, v.Stock, v.Image)
			if err != nil {
				return 0, fmt.Errorf("insert variant[%s=%s]: %w", v.Name, v.Value, err)
			}
		}

		return id, nil
	})
	if err != nil {
		return 0, fmt.Errorf("withTx: %w", err)
	}

	return productID, nil
}

// DecrementVariantStock is a single conditional UPDATE guarded by the
// stock >= quantity predicate, so two concurrent orders cannot both pass
// the stock check on the same variant row.
func (r *productRepository) DecrementVariantStock(ctx context.Context, productID int64, name, value string, quantity int32) error {
	if quantity <= 0 {
		return errors.New("quantity is not positive")
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE product_variants
		 SET stock = stock - $4
		 WHERE product_id = $1 AND variant_name = $2 AND variant_value = $3 AND stock >= $4`,
		productID, name, value, quantity)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM product_variants
			WHERE product_id = $1 AND variant_name = $2 AND variant_value = $3
		 )`, productID, name, value).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check variant exists: %w", err)
	}

	if !exists {
		return fmt.Errorf("variant[%s=%s] of product[%d]: %w", name, value, productID, ErrVariantNotFound)
	}

	return fmt.Errorf("variant[%s=%s] of product[%d]: %w", name, value, productID, ErrInsufficientStock)
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p            domain.Product
		amount       decimal.Decimal
		currencyCode string
		image        *string
	)

	if err := row.Scan(&p.ID, &p.Title, &p.Description, &amount, &currencyCode, &image, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return p, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	p.BasePrice = domain.Money{Amount: amount, Currency: parsedCurrency}
	p.Image = image

	return p, nil
}

func scanVariant(row pgx.Row, productID *int64) (domain.Variant, error) {
	var (
		v      domain.Variant
		amount decimal.Decimal
		image  *string
	)

	if err := row.Scan(productID, &v.Name, &v.Value, &amount, &v.Stock, &image); err != nil {
		return v, err
	}

	// Currency is filled in by the caller from the owning product.
	v.Price = domain.Money{Amount: amount}
	v.Image = image

	return v, nil
}
