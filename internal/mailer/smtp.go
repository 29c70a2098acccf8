package mailer

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/nikolayk812/eshop/internal/domain"
	"github.com/nikolayk812/eshop/internal/port"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(cfg SMTPConfig) (port.EmailSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail.NewClient: %w", err)
	}

	return &smtpSender{client: client, from: cfg.From}, nil
}

func (s *smtpSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	m := mail.NewMsg()

	if err := m.From(s.from); err != nil {
		return fmt.Errorf("m.From: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("m.To: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("client.DialAndSendWithContext: %w", err)
	}

	return nil
}
