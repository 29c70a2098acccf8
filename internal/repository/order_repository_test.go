package repository_test

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/goleak"

	"github.com/nikolayk812/eshop/internal/domain"
	"github.com/nikolayk812/eshop/internal/port"
	"github.com/nikolayk812/eshop/internal/repository"
)

type orderRepositorySuite struct {
	suite.Suite

	repo      port.OrderRepository
	products  port.ProductRepository
	pool      *pgxpool.Pool
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestOrderRepositorySuite(t *testing.T) {
	// Verifies no leaks after all tests in the suite run.
	defer goleak.VerifyNone(t)

	suite.Run(t, new(orderRepositorySuite))
}

// before all tests in the suite
func (suite *orderRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = repository.NewPool(ctx, connStr, 10)
	suite.NoError(err)

	suite.repo = repository.NewOrder(suite.pool)
	suite.products = repository.NewProduct(suite.pool)
}

// after all tests in the suite
func (suite *orderRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *orderRepositorySuite) TestInsertOrder() {
	tests := []struct {
		name      string
		orderFunc func(products ...domain.Product) domain.Order
		wantError string
	}{
		{
			name:      "valid order with items: ok",
			orderFunc: randomOrder,
		},
		{
			name: "invalid order, no items: fail",
			orderFunc: func(products ...domain.Product) domain.Order {
				o := randomOrder(products...)
				o.Items = nil
				return o
			},
			wantError: "no items in order",
		},
		{
			name: "invalid order, empty order number: fail",
			orderFunc: func(products ...domain.Product) domain.Order {
				o := randomOrder(products...)
				o.OrderNumber = ""
				return o
			},
			wantError: "order number is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			defer suite.deleteAllOrders()

			t := suite.T()
			ctx := t.Context()

			product1 := suite.mustCreateProduct(randomProduct())
			product2 := suite.mustCreateProduct(randomProduct())

			ttOrder := tt.orderFunc(product1, product2)

			orderID, err := suite.repo.InsertOrder(ctx, ttOrder)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			actualOrder, err := suite.repo.GetOrderByNumber(ctx, ttOrder.OrderNumber)
			require.NoError(t, err)

			expected := ttOrder
			expected.ID = orderID

			assertOrder(t, expected, actualOrder)
		})
	}
}

func (suite *orderRepositorySuite) TestGetOrderByNumber() {
	defer suite.deleteAllOrders()

	t := suite.T()
	ctx := t.Context()

	_, err := suite.repo.GetOrderByNumber(ctx, "ORD-0000000000000")
	require.ErrorIs(t, err, repository.ErrOrderNotFound)

	_, err = suite.repo.GetOrderByNumber(ctx, "")
	require.EqualError(t, err, "order number is empty")
}

// Inserting an order with an item pointing at a nonexistent product must
// leave no trace, the order header insert rolls back with the items.
func (suite *orderRepositorySuite) TestInsertOrderAllOrNothing() {
	defer suite.deleteAllOrders()

	t := suite.T()
	ctx := t.Context()

	product := suite.mustCreateProduct(randomProduct())

	order := randomOrder(product)
	order.Items = append(order.Items, domain.OrderItem{
		ProductID:    999_999_999,
		VariantName:  "color",
		VariantValue: "red",
		Quantity:     1,
		PricePerItem: randomMoney(),
	})

	_, err := suite.repo.InsertOrder(ctx, order)
	require.Error(t, err)

	_, err = suite.repo.GetOrderByNumber(ctx, order.OrderNumber)
	require.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func (suite *orderRepositorySuite) TestInsertOrderComputesSubtotal() {
	defer suite.deleteAllOrders()

	t := suite.T()
	ctx := t.Context()

	product := suite.mustCreateProduct(randomProduct())

	order := randomOrder(product)
	order.Items[0].Quantity = 3
	// Subtotal submitted by the caller is ignored and recomputed on write.
	order.Items[0].Subtotal = domain.NewMoney(decimal.NewFromInt(1))

	_, err := suite.repo.InsertOrder(ctx, order)
	require.NoError(t, err)

	actual, err := suite.repo.GetOrderByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)

	wantSubtotal := order.Items[0].PricePerItem.Mul(3)
	assert.True(t, wantSubtotal.Amount.Equal(actual.Items[0].Subtotal.Amount),
		"want %s, got %s", wantSubtotal.Amount, actual.Items[0].Subtotal.Amount)
}

func (suite *orderRepositorySuite) mustCreateProduct(product domain.Product) domain.Product {
	productID, err := suite.products.CreateProduct(suite.T().Context(), product)
	suite.NoError(err)

	product.ID = productID
	return product
}

func (suite *orderRepositorySuite) deleteAllOrders() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE products, product_variants, orders, order_items CASCADE")
	suite.NoError(err)
}

func randomOrder(products ...domain.Product) domain.Order {
	total := decimal.Zero

	var items []domain.OrderItem
	for _, p := range products {
		item := randomOrderItem(p)
		total = total.Add(item.Subtotal.Amount)
		items = append(items, item)
	}

	return domain.Order{
		OrderNumber: fmt.Sprintf("ORD-%s", gofakeit.UUID()),
		Name:        gofakeit.Name(),
		Email:       gofakeit.Email(),
		Phone:       gofakeit.Phone(),
		Address:     gofakeit.Street(),
		City:        gofakeit.City(),
		State:       gofakeit.State(),
		ZipCode:     gofakeit.Zip(),
		TotalPrice:  domain.NewMoney(total),
		Status:      domain.OrderStatusApproved,
		Items:       items,
	}
}

func randomOrderItem(p domain.Product) domain.OrderItem {
	v := p.Variants[0]
	quantity := int32(gofakeit.Number(1, 5))

	return domain.OrderItem{
		ProductID:    p.ID,
		VariantName:  v.Name,
		VariantValue: v.Value,
		Quantity:     quantity,
		PricePerItem: p.BasePrice,
		Subtotal:     p.BasePrice.Mul(quantity),

		ProductTitle: p.Title,
		ProductImage: p.Image,
	}
}

func assertOrder(t *testing.T, expected, actual domain.Order) {
	t.Helper()

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Order{}, "CreatedAt"),
		currencyComparer(),
		decimalComparer(),
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.False(t, actual.CreatedAt.IsZero())
	assert.NotZero(t, actual.ID)
}
