package postgres

import (
	"context"
	"fmt"

	"github.com/mkadlec/theater-api/internal/domain"
)

type TicketRepo struct {
	pool DB
	db   DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts a ticket and populates its created_at. The caller is
// expected to pair this with ShowRepo.DecrementTickets inside one
// transaction; tickets are never written outside that pairing.
func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	const op = "postgres.TicketRepo.Create"

	db := r.handle()

	err := db.QueryRow(ctx,
		`INSERT INTO tickets(id, show_id, user_id, buyer_name, buyer_email, buyer_phone)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		t.ID, t.ShowID, t.UserID, t.BuyerName, t.BuyerEmail, t.BuyerPhone,
	).Scan(&t.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// CountByShow counts tickets sold for a show.
func (r *TicketRepo) CountByShow(ctx context.Context, showID int64) (int64, error) {
	const op = "postgres.TicketRepo.CountByShow"

	db := r.handle()

	var n int64
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets WHERE show_id = $1`,
		showID,
	).Scan(&n)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

// ListByUser lists a user's tickets together with the show they were
// bought for, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID int64) ([]domain.TicketWithShow, error) {
	const op = "postgres.TicketRepo.ListByUser"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT t.id, t.show_id, t.user_id, t.buyer_name, t.buyer_email, t.buyer_phone,
		        t.created_at, s.name, s.date
		 FROM tickets t
		 JOIN shows s ON s.id = t.show_id
		 WHERE t.user_id = $1
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.TicketWithShow
	for rows.Next() {
		var tws domain.TicketWithShow

		if err := rows.Scan(
			&tws.ID,
			&tws.ShowID,
			&tws.UserID,
			&tws.BuyerName,
			&tws.BuyerEmail,
			&tws.BuyerPhone,
			&tws.CreatedAt,
			&tws.ShowName,
			&tws.ShowDate,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, tws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
