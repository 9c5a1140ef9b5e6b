package notifier

import (
	"context"
	"log/slog"

	"github.com/mkadlec/theater-api/internal/domain"
)

// Notifier delivers a confirmation to the buyer after a ticket has been
// reserved. Delivery is best effort; callers must not let a notifier
// error affect the reservation itself.
type Notifier interface {
	TicketReserved(ctx context.Context, ticket domain.Ticket, show domain.Show) error
}

// LogNotifier writes confirmations to the log instead of sending them.
// Used when no SMTP host is configured, typically in development.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) TicketReserved(ctx context.Context, ticket domain.Ticket, show domain.Show) error {
	n.logger.InfoContext(ctx, "ticket reserved (email disabled)",
		"ticket_id", ticket.ID,
		"show", show.Name,
		"buyer_email", ticket.BuyerEmail,
	)

	return nil
}
