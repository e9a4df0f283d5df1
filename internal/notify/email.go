package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"trailmarket/internal/config"
)

// SMTPMailer delivers notification emails through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zerolog.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, logger *zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
