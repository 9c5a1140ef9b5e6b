package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mkadlec/theater-api/internal/domain"
	"github.com/mkadlec/theater-api/internal/notifier"
	"github.com/mkadlec/theater-api/internal/repository"
	postgresrepo "github.com/mkadlec/theater-api/internal/repository/postgres"
	redisrepo "github.com/mkadlec/theater-api/internal/repository/redis"
	"github.com/mkadlec/theater-api/internal/uow"
)

// Service manages the show catalog and ticket reservations.
type Service struct {
	store   *postgresrepo.Store
	limiter *redisrepo.SlidingWindowLimiter
	uow     *uow.UoW
	mailer  notifier.Notifier
	logger  *slog.Logger
}

func New(
	store *postgresrepo.Store,
	limiter *redisrepo.SlidingWindowLimiter,
	mailer notifier.Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:   store,
		limiter: limiter,
		uow:     uow.NewUoW(store),
		mailer:  mailer,
		logger:  logger,
	}
}

type CreateShowInput struct {
	Name         string
	Description  string
	Date         time.Time
	Place        string
	ImageURL     *string
	TicketsCount *int64
}

type UpdateShowInput struct {
	Name         *string
	Description  *string
	Date         *time.Time
	Place        *string
	ImageURL     *string
	TicketsCount *int64
}

type ReserveInput struct {
	ShowID     int64
	BuyerName  string
	BuyerEmail string
	BuyerPhone string
	UserID     *int64
	RateKey    string
}

// CreateShow validates and stores a new show. Place and ticket count fall
// back to the house defaults when omitted.
//
// Returns:
//   - error: inventory.ErrDateNotFuture if the date is not in the future.
func (s *Service) CreateShow(ctx context.Context, in CreateShowInput) (*domain.Show, error) {
	const op = "service.inventory.CreateShow"

	if in.Name == "" {
		return nil, fmt.Errorf("%s:%w: name is required", op, ErrInvalidShow)
	}

	if !in.Date.After(time.Now()) {
		return nil, fmt.Errorf("%s:%w", op, ErrDateNotFuture)
	}

	show := &domain.Show{
		Name:         in.Name,
		Description:  in.Description,
		Date:         in.Date,
		Place:        domain.DefaultPlace,
		ImageURL:     in.ImageURL,
		TicketsCount: domain.DefaultTicketsCount,
	}

	if in.Place != "" {
		show.Place = in.Place
	}

	if in.TicketsCount != nil {
		if *in.TicketsCount < 0 {
			return nil, fmt.Errorf("%s:%w: tickets count must not be negative", op, ErrInvalidShow)
		}
		show.TicketsCount = *in.TicketsCount
	}

	if err := s.store.Shows().Create(ctx, show); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return show, nil
}

// UpdateShow applies a partial update to a show. Only non-nil fields
// change; a new date must again be in the future.
//
// Returns:
//   - error: inventory.ErrShowNotFound if the show is not found.
//   - error: inventory.ErrDateNotFuture if the new date is not in the future.
func (s *Service) UpdateShow(ctx context.Context, id int64, in UpdateShowInput) (*domain.Show, error) {
	const op = "service.inventory.UpdateShow"

	if in.Date != nil && !in.Date.After(time.Now()) {
		return nil, fmt.Errorf("%s:%w", op, ErrDateNotFuture)
	}

	if in.Name != nil && *in.Name == "" {
		return nil, fmt.Errorf("%s:%w: name must not be empty", op, ErrInvalidShow)
	}

	if in.TicketsCount != nil && *in.TicketsCount < 0 {
		return nil, fmt.Errorf("%s:%w: tickets count must not be negative", op, ErrInvalidShow)
	}

	var updated *domain.Show

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		show, err := s.store.Shows().With(tx).GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrShowNotFound)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		if in.Name != nil {
			show.Name = *in.Name
		}
		if in.Description != nil {
			show.Description = *in.Description
		}
		if in.Date != nil {
			show.Date = *in.Date
		}
		if in.Place != nil {
			show.Place = *in.Place
		}
		if in.ImageURL != nil {
			show.ImageURL = in.ImageURL
		}
		if in.TicketsCount != nil {
			show.TicketsCount = *in.TicketsCount
		}

		if err := s.store.Shows().With(tx).Update(ctx, show); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrShowNotFound)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		updated = show

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteShow removes a show. Tickets for it go with it.
//
// Returns:
//   - error: inventory.ErrShowNotFound if the show is not found.
func (s *Service) DeleteShow(ctx context.Context, id int64) error {
	const op = "service.inventory.DeleteShow"

	if err := s.store.Shows().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrShowNotFound)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// GetShow returns a single show.
//
// Returns:
//   - error: inventory.ErrShowNotFound if the show is not found.
func (s *Service) GetShow(ctx context.Context, id int64) (*domain.Show, error) {
	const op = "service.inventory.GetShow"

	show, err := s.store.Shows().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrShowNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return show, nil
}

// ListShows returns every show, newest date first.
func (s *Service) ListShows(ctx context.Context) ([]domain.Show, error) {
	const op = "service.inventory.ListShows"

	shows, err := s.store.Shows().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return shows, nil
}

// ListFutureShows returns shows whose date is still ahead of now.
func (s *Service) ListFutureShows(ctx context.Context) ([]domain.Show, error) {
	const op = "service.inventory.ListFutureShows"

	shows, err := s.store.Shows().ListFuture(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return shows, nil
}

// ListShowsWithTickets returns every show together with its sold tickets.
func (s *Service) ListShowsWithTickets(ctx context.Context) ([]domain.ShowWithTickets, error) {
	const op = "service.inventory.ListShowsWithTickets"

	shows, err := s.store.Shows().ListWithTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return shows, nil
}

// ReserveTicket claims one ticket for the show: the remaining count is
// decremented and the ticket row is written in the same transaction, so a
// reservation either fully happens or not at all. The confirmation email
// goes out after commit and never affects the outcome.
//
// Returns:
//   - *domain.Ticket: the reserved ticket.
//   - error: inventory.ErrShowNotFound if the show is not found.
//   - error: inventory.ErrNoTicketsAvailable if the show is sold out.
//   - error: inventory.ErrRateLimited if the caller is over the request window.
func (s *Service) ReserveTicket(ctx context.Context, in ReserveInput) (*domain.Ticket, error) {
	const op = "service.inventory.ReserveTicket"

	if s.limiter != nil && in.RateKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, in.RateKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w: retry in %s", op, ErrRateLimited, retry)
		}
	}

	ticket := &domain.Ticket{
		ID:         uuid.New(),
		ShowID:     in.ShowID,
		UserID:     in.UserID,
		BuyerName:  in.BuyerName,
		BuyerEmail: in.BuyerEmail,
		BuyerPhone: in.BuyerPhone,
	}

	// Read committed is enough here: the conditional decrement
	// re-checks tickets_count > 0 after the row lock is granted, so
	// concurrent buyers never oversell and never trip serialization
	// failures.
	opts := &pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

	err := s.uow.DoWithOpts(ctx, opts, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		if err := s.store.Shows().With(tx).DecrementTickets(ctx, in.ShowID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrShowNotFound)
			}

			if errors.Is(err, repository.ErrSoldOut) {
				return fmt.Errorf("%s:%w", op, ErrNoTicketsAvailable)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		if err := s.store.Tickets().With(tx).Create(ctx, ticket); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		show, err := s.store.Shows().With(tx).GetByID(ctx, in.ShowID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			if err := s.mailer.TicketReserved(ctx, *ticket, *show); err != nil {
				s.logger.WarnContext(ctx, "confirmation email failed",
					"ticket_id", ticket.ID,
					"buyer_email", ticket.BuyerEmail,
					"error", err,
				)
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return ticket, nil
}
