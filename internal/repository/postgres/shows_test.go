package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkadlec/theater-api/internal/domain"
	"github.com/mkadlec/theater-api/internal/repository"
	"github.com/mkadlec/theater-api/internal/repository/postgres"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *postgres.Store {
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

	return store
}

func newTestShow(ticketsCount int64) *domain.Show {
	return &domain.Show{
		Name:         "show-" + uuid.NewString(),
		Description:  "rehearsal",
		Date:         time.Now().Add(48 * time.Hour),
		Place:        domain.DefaultPlace,
		TicketsCount: ticketsCount,
	}
}

func TestShowRepo_CreateAndGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	show := newTestShow(10)
	require.NoError(t, store.Shows().Create(ctx, show))
	require.NotZero(t, show.ID)
	require.False(t, show.CreatedAt.IsZero())

	got, err := store.Shows().GetByID(ctx, show.ID)
	require.NoError(t, err)
	require.Equal(t, show.Name, got.Name)
	require.Equal(t, int64(10), got.TicketsCount)
	require.Equal(t, domain.DefaultPlace, got.Place)
}

func TestShowRepo_GetMissing(t *testing.T) {
	store := testStore(t)

	_, err := store.Shows().GetByID(context.Background(), -1)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestShowRepo_DecrementTickets(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	show := newTestShow(2)
	require.NoError(t, store.Shows().Create(ctx, show))

	require.NoError(t, store.Shows().DecrementTickets(ctx, show.ID))
	require.NoError(t, store.Shows().DecrementTickets(ctx, show.ID))

	err := store.Shows().DecrementTickets(ctx, show.ID)
	require.ErrorIs(t, err, repository.ErrSoldOut)

	got, err := store.Shows().GetByID(ctx, show.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.TicketsCount)
}

func TestShowRepo_DecrementTicketsMissingShow(t *testing.T) {
	store := testStore(t)

	err := store.Shows().DecrementTickets(context.Background(), -1)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestShowRepo_UpdateAndDelete(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	show := newTestShow(5)
	require.NoError(t, store.Shows().Create(ctx, show))

	show.Name = "renamed-" + uuid.NewString()
	show.TicketsCount = 42
	require.NoError(t, store.Shows().Update(ctx, show))

	got, err := store.Shows().GetByID(ctx, show.ID)
	require.NoError(t, err)
	require.Equal(t, show.Name, got.Name)
	require.Equal(t, int64(42), got.TicketsCount)

	require.NoError(t, store.Shows().Delete(ctx, show.ID))
	_, err = store.Shows().GetByID(ctx, show.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, store.Shows().Delete(ctx, show.ID), repository.ErrNotFound)
}

func TestShowRepo_ListFuture(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	past := newTestShow(5)
	past.Date = time.Now().Add(-24 * time.Hour)
	require.NoError(t, store.Shows().Create(ctx, past))

	future := newTestShow(5)
	require.NoError(t, store.Shows().Create(ctx, future))

	shows, err := store.Shows().ListFuture(ctx)
	require.NoError(t, err)

	ids := make(map[int64]bool, len(shows))
	for _, s := range shows {
		ids[s.ID] = true
		require.True(t, s.Date.After(time.Now().Add(-time.Minute)))
	}
	require.True(t, ids[future.ID])
	require.False(t, ids[past.ID])
}

func TestShowRepo_ListOrder(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	earlier := newTestShow(5)
	earlier.Date = time.Now().Add(24 * time.Hour)
	require.NoError(t, store.Shows().Create(ctx, earlier))

	later := newTestShow(5)
	later.Date = time.Now().Add(72 * time.Hour)
	require.NoError(t, store.Shows().Create(ctx, later))

	shows, err := store.Shows().List(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(shows), 2)

	for i := 1; i < len(shows); i++ {
		require.False(t, shows[i-1].Date.Before(shows[i].Date))
	}
}

func TestShowRepo_ListWithTickets(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	show := newTestShow(5)
	require.NoError(t, store.Shows().Create(ctx, show))

	ticket := &domain.Ticket{
		ID:         uuid.New(),
		ShowID:     show.ID,
		BuyerName:  "Jana",
		BuyerEmail: "jana@example.com",
	}
	require.NoError(t, store.Tickets().Create(ctx, ticket))

	shows, err := store.Shows().ListWithTickets(ctx)
	require.NoError(t, err)

	var found *domain.ShowWithTickets
	for i := range shows {
		if shows[i].ID == show.ID {
			found = &shows[i]
			break
		}
	}
	require.NotNil(t, found)
	require.Len(t, found.Tickets, 1)
	require.Equal(t, ticket.ID, found.Tickets[0].ID)
}
