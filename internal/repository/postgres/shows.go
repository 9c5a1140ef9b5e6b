package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mkadlec/theater-api/internal/domain"
	"github.com/mkadlec/theater-api/internal/repository"
)

type ShowRepo struct {
	pool DB
	db   DB
}

func (r *ShowRepo) With(db DB) *ShowRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ShowRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const showColumns = `id, name, description, date, place, image_url, tickets_count, created_at`

func scanShow(row pgx.Row, s *domain.Show) error {
	return row.Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.Date,
		&s.Place,
		&s.ImageURL,
		&s.TicketsCount,
		&s.CreatedAt,
	)
}

// Create inserts a show and populates its generated ID and created_at.
func (r *ShowRepo) Create(ctx context.Context, s *domain.Show) error {
	const op = "postgres.ShowRepo.Create"

	db := r.handle()

	err := db.QueryRow(ctx,
		`INSERT INTO shows(name, description, date, place, image_url, tickets_count)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		s.Name, s.Description, s.Date, s.Place, s.ImageURL, s.TicketsCount,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// GetByID retrieves a show by its ID.
//
// Returns:
//   - *domain.Show: the show when found.
//   - error: repository.ErrNotFound if the show is not found.
func (r *ShowRepo) GetByID(ctx context.Context, id int64) (*domain.Show, error) {
	const op = "postgres.ShowRepo.GetByID"

	db := r.handle()

	var s domain.Show
	err := scanShow(db.QueryRow(ctx,
		`SELECT `+showColumns+` FROM shows WHERE id = $1`,
		id,
	), &s)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &s, nil
}

// Update overwrites all mutable show fields, including a direct set of
// tickets_count (the administrative escape hatch that bypasses the
// decrement path).
//
// Returns:
//   - error: repository.ErrNotFound if the show is not found.
func (r *ShowRepo) Update(ctx context.Context, s *domain.Show) error {
	const op = "postgres.ShowRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE shows
		 SET name = $2, description = $3, date = $4, place = $5,
		     image_url = $6, tickets_count = $7
		 WHERE id = $1`,
		s.ID, s.Name, s.Description, s.Date, s.Place, s.ImageURL, s.TicketsCount,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// Delete removes a show; its tickets go with it via ON DELETE CASCADE.
//
// Returns:
//   - error: repository.ErrNotFound if the show is not found.
func (r *ShowRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgres.ShowRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM shows WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// List lists all shows ordered by date descending.
func (r *ShowRepo) List(ctx context.Context) ([]domain.Show, error) {
	const op = "postgres.ShowRepo.List"

	return r.list(ctx, op,
		`SELECT `+showColumns+` FROM shows ORDER BY date DESC`)
}

// ListFuture lists only shows whose date is still ahead, ordered by date
// descending.
func (r *ShowRepo) ListFuture(ctx context.Context) ([]domain.Show, error) {
	const op = "postgres.ShowRepo.ListFuture"

	return r.list(ctx, op,
		`SELECT `+showColumns+` FROM shows WHERE date > now() ORDER BY date DESC`)
}

func (r *ShowRepo) list(ctx context.Context, op, query string, args ...any) ([]domain.Show, error) {
	db := r.handle()

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Show
	for rows.Next() {
		var s domain.Show
		if err := scanShow(rows, &s); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// DecrementTickets atomically takes one ticket off a show's inventory.
// The conditional UPDATE is the whole concurrency story: it either finds
// a row with tickets_count > 0 and decrements it, or affects nothing.
// A zero rows-affected result is disambiguated with an existence probe
// on the same handle.
//
// Returns:
//   - error: repository.ErrNotFound if the show does not exist.
//   - error: repository.ErrSoldOut if the count was zero at decision time.
func (r *ShowRepo) DecrementTickets(ctx context.Context, showID int64) error {
	const op = "postgres.ShowRepo.DecrementTickets"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE shows
		 SET tickets_count = tickets_count - 1
		 WHERE id = $1 AND tickets_count > 0`,
		showID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shows WHERE id = $1)`,
		showID,
	).Scan(&exists)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if !exists {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return fmt.Errorf("%s:%w", op, repository.ErrSoldOut)
}

// ListWithTickets returns every show together with its tickets, ordered by
// show date descending. Shows and tickets are fetched in two queries and
// grouped in memory.
func (r *ShowRepo) ListWithTickets(ctx context.Context) ([]domain.ShowWithTickets, error) {
	const op = "postgres.ShowRepo.ListWithTickets"

	db := r.handle()

	shows, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx,
		`SELECT id, show_id, user_id, buyer_name, buyer_email, buyer_phone, created_at
		 FROM tickets
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	byShow := make(map[int64][]domain.Ticket)
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(
			&t.ID,
			&t.ShowID,
			&t.UserID,
			&t.BuyerName,
			&t.BuyerEmail,
			&t.BuyerPhone,
			&t.CreatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}

		byShow[t.ShowID] = append(byShow[t.ShowID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	out := make([]domain.ShowWithTickets, 0, len(shows))
	for _, s := range shows {
		out = append(out, domain.ShowWithTickets{
			Show:    s,
			Tickets: byShow[s.ID],
		})
	}

	return out, nil
}
