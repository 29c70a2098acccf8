package domain

import "errors"

// OrderStatus is assigned exactly once at card-authorization time and is
// terminal: there is no pending/shipped/cancelled state in this system.
type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusDeclined OrderStatus = "declined"
	OrderStatusError    OrderStatus = "error"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusApproved: {},
	OrderStatusDeclined: {},
	OrderStatusError:    {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid order status")
}

func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(validOrderStatuses))
	for status := range validOrderStatuses {
		result = append(result, status)
	}
	return result
}
