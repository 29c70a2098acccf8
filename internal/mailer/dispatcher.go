package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nikolayk812/eshop/internal/domain"
	"github.com/nikolayk812/eshop/internal/port"
)

const (
	defaultQueueSize   = 64
	defaultMaxAttempts = 3
	defaultBackoff     = time.Second
	sendTimeout        = 30 * time.Second
)

type DispatcherOptions struct {
	QueueSize   int
	MaxAttempts int
	Backoff     time.Duration
}

// Dispatcher delivers notifications on its own goroutine with retries.
// Notify never blocks and never fails the caller: when the queue is full
// the notification is dropped and logged.
type Dispatcher struct {
	renderer *Renderer
	sender   port.EmailSender
	logger   *slog.Logger

	maxAttempts int
	backoff     time.Duration

	queue     chan domain.OrderNotification
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewDispatcher(renderer *Renderer, sender port.EmailSender, logger *slog.Logger, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}

	d := &Dispatcher{
		renderer:    renderer,
		sender:      sender,
		logger:      logger,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		queue:       make(chan domain.OrderNotification, opts.QueueSize),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) Notify(n domain.OrderNotification) {
	select {
	case d.queue <- n:
	default:
		d.logger.Warn("notification queue full, dropping message",
			"order_number", n.OrderNumber, "email", n.Email)
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n domain.OrderNotification) {
	msg, err := d.renderer.Render(n)
	if err != nil {
		d.logger.Error("failed to render notification",
			"order_number", n.OrderNumber, "error", err)
		return
	}

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err = d.sender.Send(ctx, msg)
		cancel()

		if err == nil {
			d.logger.Info("order notification sent",
				"order_number", n.OrderNumber, "status", string(n.Status))
			return
		}

		d.logger.Warn("email delivery failed",
			"order_number", n.OrderNumber, "attempt", attempt, "error", err)

		if attempt < d.maxAttempts {
			time.Sleep(d.backoff * time.Duration(1<<(attempt-1)))
		}
	}

	d.logger.Error("giving up on email delivery",
		"order_number", n.OrderNumber, "attempts", d.maxAttempts)
}

// Close drains already queued notifications and stops the worker.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
