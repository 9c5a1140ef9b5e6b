package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mkadlec/theater-api/internal/domain"
)

type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// SMTPNotifier sends a plain-text confirmation email per reservation.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) TicketReserved(ctx context.Context, ticket domain.Ticket, show domain.Show) error {
	const op = "notifier.SMTPNotifier.TicketReserved"

	msg := buildConfirmation(n.cfg.From, ticket, show)
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{ticket.BuyerEmail}, msg); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func buildConfirmation(from string, ticket domain.Ticket, show domain.Show) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", ticket.BuyerEmail)
	fmt.Fprintf(&b, "Subject: Ticket confirmation: %s\r\n", show.Name)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", ticket.BuyerName)
	fmt.Fprintf(&b, "your ticket %s for %q is confirmed.\r\n\r\n", ticket.ID, show.Name)
	fmt.Fprintf(&b, "When: %s\r\n", show.Date.Format("Mon, 02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "Where: %s\r\n\r\n", show.Place)
	b.WriteString("See you there!\r\n")

	return []byte(b.String())
}
