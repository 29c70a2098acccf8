// Package mailer renders order notifications into HTML messages and
// delivers them over SMTP, asynchronously and best-effort: a failed or
// slow delivery never reaches the checkout response path.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nikolayk812/eshop/internal/domain"
)

//go:embed templates/order_email.html.tmpl
var templatesFS embed.FS

type Renderer struct {
	tmpl    *template.Template
	printer *message.Printer
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/order_email.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS: %w", err)
	}

	return &Renderer{
		tmpl:    tmpl,
		printer: message.NewPrinter(language.English),
	}, nil
}

type emailData struct {
	Name        string
	OrderNumber string
	Status      domain.OrderStatus
	StatusBadge string
	Approved    bool
	Declined    bool

	Products []productData

	ItemsSubtotal string
	TaxAmount     string
	ShippingCost  string
	GrandTotal    string
}

type productData struct {
	Title    string
	Image    string
	Variant  string
	Quantity int32
	Price    string
	Subtotal string
}

func (r *Renderer) Render(n domain.OrderNotification) (domain.EmailMessage, error) {
	var msg domain.EmailMessage

	subject, badge, err := subjectAndBadge(n.Status)
	if err != nil {
		return msg, err
	}

	products := make([]productData, 0, len(n.Products))
	subtotal := decimal.Zero

	for _, p := range n.Products {
		lineTotal := p.Price.Mul(p.Quantity)
		subtotal = subtotal.Add(lineTotal.Amount)

		products = append(products, productData{
			Title:    p.Title,
			Image:    p.Image,
			Variant:  p.Variant,
			Quantity: p.Quantity,
			Price:    r.formatMoney(p.Price),
			Subtotal: r.formatMoney(lineTotal),
		})
	}

	data := emailData{
		Name:          n.Name,
		OrderNumber:   n.OrderNumber,
		Status:        n.Status,
		StatusBadge:   badge,
		Approved:      n.Status == domain.OrderStatusApproved,
		Declined:      n.Status == domain.OrderStatusDeclined,
		Products:      products,
		ItemsSubtotal: r.formatMoney(domain.Money{Amount: subtotal, Currency: n.TotalPrice.Currency}),
		TaxAmount:     r.formatMoney(n.TaxAmount),
		ShippingCost:  r.formatMoney(n.ShippingCost),
		GrandTotal:    r.formatMoney(n.TotalPrice),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return msg, fmt.Errorf("tmpl.Execute: %w", err)
	}

	return domain.EmailMessage{
		To:      n.Email,
		Subject: subject,
		HTML:    buf.String(),
	}, nil
}

func subjectAndBadge(status domain.OrderStatus) (string, string, error) {
	switch status {
	case domain.OrderStatusApproved:
		return "Your Order Has Been Confirmed!", "Confirmed", nil
	case domain.OrderStatusDeclined:
		return "Your Order Could Not Be Processed", "Declined", nil
	case domain.OrderStatusError:
		return "Payment Gateway Error - Order Processing Failed", "Gateway Failure", nil
	default:
		return "", "", fmt.Errorf("unknown order status: %s", status)
	}
}

func (r *Renderer) formatMoney(m domain.Money) string {
	amount := m.Currency.Amount(m.Amount.InexactFloat64())
	return r.printer.Sprintf("%v", currency.NarrowSymbol(amount))
}
