package domain

// OrderNotification is the transport-agnostic payload handed to the mailer
// once an order is finalized. It carries the full price breakdown so the
// rendered message does not need another read from storage.
type OrderNotification struct {
	Name        string
	Email       string
	OrderNumber string
	Status      OrderStatus

	TotalPrice   Money
	TaxAmount    Money
	ShippingCost Money

	Products []NotificationProduct
}

type NotificationProduct struct {
	Title    string
	Image    string
	Variant  string
	Quantity int32
	Price    Money
}

// EmailMessage is a fully composed message ready for delivery.
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
}
