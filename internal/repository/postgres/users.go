package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/mkadlec/theater-api/internal/domain"
)

type UserRepo struct {
	pool DB
	db   DB
}

func (r *UserRepo) With(db DB) *UserRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *UserRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const userColumns = `id, username, email, password_hash, is_admin, created_at`

func scanUser(row pgx.Row, u *domain.User) error {
	return row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.CreatedAt,
	)
}

// Create inserts a user and populates the generated ID and created_at.
// Username and email uniqueness is enforced case-insensitively by
// lower() indexes.
//
// Returns:
//   - error: repository.ErrUsernameTaken / repository.ErrEmailTaken on a
//     unique violation of the respective index.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "postgres.UserRepo.Create"

	db := r.handle()

	err := db.QueryRow(ctx,
		`INSERT INTO users(username, email, password_hash, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Username, u.Email, u.PasswordHash, u.IsAdmin,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// GetByID retrieves a user by ID.
//
// Returns:
//   - error: repository.ErrNotFound if the user is not found.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const op = "postgres.UserRepo.GetByID"

	db := r.handle()

	var u domain.User
	err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	), &u)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by username, compared case-insensitively.
//
// Returns:
//   - error: repository.ErrNotFound if the user is not found.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const op = "postgres.UserRepo.GetByUsername"

	db := r.handle()

	var u domain.User
	err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`,
		username,
	), &u)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by email, compared case-insensitively.
//
// Returns:
//   - error: repository.ErrNotFound if the user is not found.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "postgres.UserRepo.GetByEmail"

	db := r.handle()

	var u domain.User
	err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		email,
	), &u)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &u, nil
}
