package domain

import "time"

type Product struct {
	ID          int64
	Title       string
	Description string
	BasePrice   Money
	Image       *string
	Variants    []Variant

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Variant is a single (dimension name, value) combination of a product,
// e.g. color=red. The pair is unique within a product and carries its own
// stock count. Stock is mutated only by the checkout workflow.
type Variant struct {
	Name  string
	Value string
	Price Money
	Stock int32
	Image *string
}

// FindVariant returns the variant with the given (name, value) pair.
func (p Product) FindVariant(name, value string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Name == name && v.Value == value {
			return v, true
		}
	}
	return Variant{}, false
}
