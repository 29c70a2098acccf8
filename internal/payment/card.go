// Package payment simulates a payment gateway. Three sentinel card
// numbers map to fixed authorization outcomes; everything else is
// rejected as an invalid card.
package payment

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/nikolayk812/eshop/internal/domain"
	"github.com/nikolayk812/eshop/internal/port"
)

var ErrInvalidCard = errors.New("invalid or unsupported card number")

const (
	cardApproved = "1111111111111111"
	cardDeclined = "2222222222222222"
	cardError    = "3333333333333333"
)

type simulator struct{}

func NewSimulator() port.CardAuthorizer {
	return simulator{}
}

func (simulator) Authorize(_ context.Context, cardNumber string) (domain.OrderStatus, error) {
	clean := stripSpaces(cardNumber)

	switch clean {
	case cardApproved:
		return domain.OrderStatusApproved, nil
	case cardDeclined:
		return domain.OrderStatusDeclined, nil
	case cardError:
		return domain.OrderStatusError, nil
	default:
		return "", ErrInvalidCard
	}
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
