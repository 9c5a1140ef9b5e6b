package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkadlec/theater-api/internal/domain"
	"github.com/mkadlec/theater-api/internal/repository"
	postgresrepo "github.com/mkadlec/theater-api/internal/repository/postgres"
	"golang.org/x/crypto/bcrypt"
)

// TokenStore issues and resolves opaque bearer tokens.
type TokenStore interface {
	Issue(ctx context.Context, sess domain.Session) (string, error)
	Lookup(ctx context.Context, token string) (domain.Session, bool, error)
}

// Service handles registration, login and the user profile.
type Service struct {
	store  *postgresrepo.Store
	tokens TokenStore
}

func New(store *postgresrepo.Store, tokens TokenStore) *Service {
	return &Service{store: store, tokens: tokens}
}

// Register creates a new account with a bcrypt-hashed password. Username
// and email are unique regardless of case; the pre-checks give friendly
// errors and the database indexes stay as the backstop for races.
//
// Returns:
//   - error: identity.ErrUsernameTaken / identity.ErrEmailTaken on a duplicate.
func (s *Service) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	const op = "service.identity.Register"

	if _, err := s.store.Users().GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrUsernameTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrEmailTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, fmt.Errorf("%s:%w", op, ErrUsernameTaken)
		}

		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fmt.Errorf("%s:%w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return user, nil
}

// Authenticate verifies the credentials and returns the user together
// with a bearer token. Unknown user and wrong password produce the same
// error so login failures leak nothing about which part was wrong.
//
// Returns:
//   - error: identity.ErrInvalidCredentials if the credentials do not match.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, string, error) {
	const op = "service.identity.Authenticate"

	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
		}

		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(ctx, domain.Session{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	return user, token, nil
}

// Profile returns the user and their tickets, newest first.
//
// Returns:
//   - error: identity.ErrUserNotFound if the user is not found.
func (s *Service) Profile(ctx context.Context, userID int64) (*domain.User, []domain.TicketWithShow, error) {
	const op = "service.identity.Profile"

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s:%w", op, ErrUserNotFound)
		}

		return nil, nil, fmt.Errorf("%s:%w", op, err)
	}

	tickets, err := s.store.Tickets().ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s:%w", op, err)
	}

	return user, tickets, nil
}

// EnsureAdmin creates the administrator account when it does not exist
// yet. Runs at startup; an existing account is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) error {
	const op = "service.identity.EnsureAdmin"

	_, err := s.store.Users().GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s:%w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	admin := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}

	if err := s.store.Users().Create(ctx, admin); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
