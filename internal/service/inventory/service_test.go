package inventory_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkadlec/theater-api/internal/domain"
	"github.com/mkadlec/theater-api/internal/repository/postgres"
	"github.com/mkadlec/theater-api/internal/service/inventory"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type notifierMock struct {
	mu      sync.Mutex
	tickets []domain.Ticket
	err     error
}

func (m *notifierMock) TicketReserved(_ context.Context, ticket domain.Ticket, _ domain.Show) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets = append(m.tickets, ticket)
	return m.err
}

func (m *notifierMock) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testService(t *testing.T) (*inventory.Service, *postgres.Store, *notifierMock) {
	t.Helper()

	dsn := os.Getenv("POSTGRES_URL")
	if dsn == "" {
		t.Skip("POSTGRES_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := postgres.NewStore(pool)
	require.NoError(t, store.InitSchema(context.Background()))

	mock := &notifierMock{}
	svc := inventory.New(store, nil, mock, discardLogger())

	return svc, store, mock
}

func createShow(t *testing.T, svc *inventory.Service, tickets int64) *domain.Show {
	t.Helper()

	show, err := svc.CreateShow(context.Background(), inventory.CreateShowInput{
		Name:         "show-" + uuid.NewString(),
		Date:         time.Now().Add(48 * time.Hour),
		TicketsCount: &tickets,
	})
	require.NoError(t, err)

	return show
}

func reserveInput(showID int64) inventory.ReserveInput {
	return inventory.ReserveInput{
		ShowID:     showID,
		BuyerName:  "Petr Novák",
		BuyerEmail: "petr@example.com",
		BuyerPhone: "603123456",
	}
}

func TestCreateShowRejectsPastDate(t *testing.T) {
	svc := inventory.New(nil, nil, &notifierMock{}, discardLogger())

	_, err := svc.CreateShow(context.Background(), inventory.CreateShowInput{
		Name: "past show",
		Date: time.Now().Add(-time.Hour),
	})
	require.ErrorIs(t, err, inventory.ErrDateNotFuture)
}

func TestCreateShowRejectsEmptyName(t *testing.T) {
	svc := inventory.New(nil, nil, &notifierMock{}, discardLogger())

	_, err := svc.CreateShow(context.Background(), inventory.CreateShowInput{
		Date: time.Now().Add(time.Hour),
	})
	require.ErrorIs(t, err, inventory.ErrInvalidShow)
}

func TestUpdateShowRejectsPastDate(t *testing.T) {
	svc := inventory.New(nil, nil, &notifierMock{}, discardLogger())

	past := time.Now().Add(-time.Hour)
	_, err := svc.UpdateShow(context.Background(), 1, inventory.UpdateShowInput{Date: &past})
	require.ErrorIs(t, err, inventory.ErrDateNotFuture)
}

func TestCreateShowDefaults(t *testing.T) {
	svc, _, _ := testService(t)

	show, err := svc.CreateShow(context.Background(), inventory.CreateShowInput{
		Name: "show-" + uuid.NewString(),
		Date: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, domain.DefaultPlace, show.Place)
	require.Equal(t, int64(domain.DefaultTicketsCount), show.TicketsCount)
}

func TestReserveTicket(t *testing.T) {
	svc, store, mock := testService(t)
	ctx := context.Background()

	show := createShow(t, svc, 3)

	ticket, err := svc.ReserveTicket(ctx, reserveInput(show.ID))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, ticket.ID)
	require.Equal(t, show.ID, ticket.ShowID)

	got, err := store.Shows().GetByID(ctx, show.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), got.TicketsCount)

	require.Equal(t, 1, mock.count())
}

func TestReserveTicketSoldOut(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	show := createShow(t, svc, 1)

	_, err := svc.ReserveTicket(ctx, reserveInput(show.ID))
	require.NoError(t, err)

	_, err = svc.ReserveTicket(ctx, reserveInput(show.ID))
	require.ErrorIs(t, err, inventory.ErrNoTicketsAvailable)

	got, err := store.Shows().GetByID(ctx, show.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.TicketsCount)

	sold, err := store.Tickets().CountByShow(ctx, show.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), sold)
}

func TestReserveTicketUnknownShow(t *testing.T) {
	svc, _, _ := testService(t)

	_, err := svc.ReserveTicket(context.Background(), reserveInput(-1))
	require.ErrorIs(t, err, inventory.ErrShowNotFound)
}

func TestReserveTicketNotifierFailure(t *testing.T) {
	svc, store, mock := testService(t)
	ctx := context.Background()

	mock.err = errors.New("smtp down")

	show := createShow(t, svc, 1)

	ticket, err := svc.ReserveTicket(ctx, reserveInput(show.ID))
	require.NoError(t, err)
	require.NotNil(t, ticket)

	got, err := store.Shows().GetByID(ctx, show.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.TicketsCount)
}

func TestReserveTicketConcurrent(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	const (
		buyers  = 32
		tickets = 5
	)

	show := createShow(t, svc, tickets)

	var (
		mu       sync.Mutex
		soldOut  int
		reserved int
	)

	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < buyers; i++ {
		g.Go(func() error {
			_, err := svc.ReserveTicket(gCtx, reserveInput(show.ID))

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				reserved++
			case errors.Is(err, inventory.ErrNoTicketsAvailable):
				soldOut++
			default:
				return err
			}

			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, tickets, reserved)
	require.Equal(t, buyers-tickets, soldOut)

	got, err := store.Shows().GetByID(ctx, show.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.TicketsCount)

	sold, err := store.Tickets().CountByShow(ctx, show.ID)
	require.NoError(t, err)
	require.Equal(t, int64(tickets), sold)
}

func TestDeleteShowMissing(t *testing.T) {
	svc, _, _ := testService(t)

	err := svc.DeleteShow(context.Background(), -1)
	require.ErrorIs(t, err, inventory.ErrShowNotFound)
}
