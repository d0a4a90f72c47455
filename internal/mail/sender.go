// Package mail serializes report rows to CSV and delivers them as an email
// attachment over authenticated SMTP.
package mail

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/johanbog/wallet-integration/internal/config"
	"github.com/johanbog/wallet-integration/internal/domain"
)

// Sender mails one report to the recipient configured for its account group.
// Delivery is opaque to the pipeline: no retry, no delivery confirmation.
type Sender struct {
	cfg *config.Config
	log zerolog.Logger

	// send delivers a composed message; replaced in tests.
	send func(m *gomail.Message) error
}

// NewSender creates a sender using the configured SMTP transport with
// STARTTLS.
func NewSender(cfg *config.Config, log zerolog.Logger) *Sender {
	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Password)
	return &Sender{
		cfg: cfg,
		log: log,
		send: func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		},
	}
}

// Send serializes rows to CSV and mails them to the group's recipient. The
// attachment is built in memory; no temp file is staged on disk.
func (s *Sender) Send(ctx context.Context, rows []domain.Row, accountGroup string) error {
	group, ok := s.cfg.Group(accountGroup)
	if !ok {
		return fmt.Errorf("Send: unknown account group %q", accountGroup)
	}

	payload, err := RenderCSV(rows)
	if err != nil {
		return fmt.Errorf("Send: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SMTP.From)
	m.SetHeader("To", group.Mail)
	m.SetHeader("Subject", s.cfg.Report.Subject)
	m.SetBody("text/plain", fmt.Sprintf("Attached: %d transactions for account group %q.", len(rows), accountGroup))

	filename := fmt.Sprintf("wallet_%s.csv", accountGroup)
	m.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(payload)
		return err
	}))

	if err := s.send(m); err != nil {
		return fmt.Errorf("Send: delivering to %s: %w", group.Mail, err)
	}

	s.log.Info().
		Str("group", accountGroup).
		Str("recipient", group.Mail).
		Int("rows", len(rows)).
		Msg("Report mailed")
	return nil
}
