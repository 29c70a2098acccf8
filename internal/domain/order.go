package domain

import "time"

type Order struct {
	ID          int64
	OrderNumber string

	Name    string
	Email   string
	Phone   string
	Address string
	City    string
	State   string
	ZipCode string

	TotalPrice Money
	Status     OrderStatus
	Items      []OrderItem

	CreatedAt time.Time
}

// OrderItem references a product by id and carries a denormalized
// variant name/value pair. Multiple variant dimensions are joined with
// VariantSeparator. PricePerItem is a snapshot of the product's base price
// taken at order time.
type OrderItem struct {
	ProductID    int64
	VariantName  string
	VariantValue string
	Quantity     int32
	PricePerItem Money
	Subtotal     Money

	// Filled on the read path only, joined from the products table.
	ProductTitle string
	ProductImage *string
}

// VariantSeparator joins the names and values of multiple variant
// dimensions inside a single order item row.
const VariantSeparator = ", "
