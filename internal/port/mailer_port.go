package port

import (
	"context"

	"github.com/nikolayk812/eshop/internal/domain"
)

// EmailSender attempts delivery of a fully composed message and reports
// success or failure. It knows nothing about orders.
type EmailSender interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

// Notifier accepts an order notification for best-effort, out-of-band
// delivery. Notify never blocks the caller and never returns an error:
// dispatch failures are the notifier's own problem.
type Notifier interface {
	Notify(n domain.OrderNotification)
}
