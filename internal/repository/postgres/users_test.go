package postgres_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mkadlec/theater-api/internal/domain"
	"github.com/mkadlec/theater-api/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTestUser() *domain.User {
	suffix := uuid.NewString()
	return &domain.User{
		Username:     "User-" + suffix,
		Email:        "user-" + suffix + "@example.com",
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhashnotar",
	}
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	user := newTestUser()
	require.NoError(t, store.Users().Create(ctx, user))
	require.NotZero(t, user.ID)

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Username, got.Username)
	require.False(t, got.IsAdmin)
}

func TestUserRepo_UsernameCaseInsensitive(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	user := newTestUser()
	require.NoError(t, store.Users().Create(ctx, user))

	got, err := store.Users().GetByUsername(ctx, strings.ToUpper(user.Username))
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	dup := newTestUser()
	dup.Username = strings.ToLower(user.Username)
	err = store.Users().Create(ctx, dup)
	require.ErrorIs(t, err, repository.ErrUsernameTaken)
}

func TestUserRepo_EmailTaken(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	user := newTestUser()
	require.NoError(t, store.Users().Create(ctx, user))

	dup := newTestUser()
	dup.Email = strings.ToUpper(user.Email)
	err := store.Users().Create(ctx, dup)
	require.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestTicketRepo_ListByUser(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	user := newTestUser()
	require.NoError(t, store.Users().Create(ctx, user))

	show := newTestShow(5)
	require.NoError(t, store.Shows().Create(ctx, show))

	ticket := &domain.Ticket{
		ID:         uuid.New(),
		ShowID:     show.ID,
		UserID:     &user.ID,
		BuyerName:  user.Username,
		BuyerEmail: user.Email,
	}
	require.NoError(t, store.Tickets().Create(ctx, ticket))

	tickets, err := store.Tickets().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.Equal(t, ticket.ID, tickets[0].ID)
	require.Equal(t, show.Name, tickets[0].ShowName)

	count, err := store.Tickets().CountByShow(ctx, show.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
