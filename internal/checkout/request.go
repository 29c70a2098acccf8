package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PlaceOrderRequest is the fully typed order submission. Totals are
// pointers so an absent field is distinguishable from an explicit zero.
type PlaceOrderRequest struct {
	Name    string
	Email   string
	Phone   string
	Address string
	City    string
	State   string
	ZipCode string

	CardNumber string
	Items      []OrderItemRequest

	TotalAmount  *decimal.Decimal
	TaxAmount    *decimal.Decimal
	ShippingCost *decimal.Decimal
}

type OrderItemRequest struct {
	ProductID int64
	Variants  []VariantSelector
	Quantity  int32
}

// VariantSelector names one requested variant dimension, e.g. color=red.
type VariantSelector struct {
	Name  string
	Value string
}

func (r PlaceOrderRequest) Validate() error {
	if anyBlank(r.Name, r.Email, r.Phone, r.Address, r.City, r.State, r.ZipCode, r.CardNumber) ||
		len(r.Items) == 0 ||
		r.TotalAmount == nil || r.TaxAmount == nil || r.ShippingCost == nil {
		return NewValidationError("Missing required fields or items")
	}

	for _, item := range r.Items {
		if item.ProductID <= 0 || len(item.Variants) == 0 || item.Quantity <= 0 {
			return NewValidationError("Each item must have productId, variants, and quantity")
		}

		for _, v := range item.Variants {
			if anyBlank(v.Name, v.Value) {
				return NewValidationError("Each variant must have name and value")
			}
		}
	}

	return nil
}

func anyBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
