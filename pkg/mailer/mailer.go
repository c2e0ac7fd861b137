package mailer

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail/v2"

	"github.com/reclaimhq/reclaim-backend/pkg/config"
	pkgerrors "github.com/reclaimhq/reclaim-backend/pkg/errors"
)

// Sender delivers a single HTML email to one recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender sends mail over SMTP with mandatory STARTTLS.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender builds a sender bound to the provided SMTP configuration.
// Configuration completeness is checked again per send so a misconfigured
// transport surfaces as a send failure rather than a boot failure.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := s.verify(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeEmail, err, "smtp transport not configured")
	}
	if to == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient address required")
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.Timeout = s.cfg.DialTimeout
	d.TLSConfig = &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.SkipTLSVerify,
	}

	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeEmail, err, "send email")
		}
		return nil
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeEmail, ctx.Err(), "send email canceled")
	}
}

func (s *SMTPSender) verify() error {
	if s.cfg.Host == "" || s.cfg.From == "" {
		return fmt.Errorf("smtp host and from address are required")
	}
	if s.cfg.Port <= 0 {
		return fmt.Errorf("smtp port must be positive, got %d", s.cfg.Port)
	}
	return nil
}
