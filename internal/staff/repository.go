package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/staffdir/staffdir/internal/platform/db"
	"github.com/staffdir/staffdir/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for user rows. Queries
// run on the caller-provided querier.
type Repository struct{}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{}
}

const userColumns = `id, email, name, COALESCE(status_id, 0), is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Status, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// ListUsers returns all users ordered by id.
func (r *Repository) ListUsers(ctx context.Context, q db.Querier) ([]User, error) {
	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetUser fetches a user by id.
func (r *Repository) GetUser(ctx context.Context, q db.Querier, id int64) (User, error) {
	user, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("staff: user %d: %w", id, httpx.ErrNotFound)
		}
		return User{}, err
	}
	return user, nil
}

// CreateUser inserts a new user row.
func (r *Repository) CreateUser(ctx context.Context, q db.Querier, email, name, passwordHash string, status int64) (User, error) {
	user, err := scanUser(q.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, status_id)
		 VALUES ($1, $2, $3, NULLIF($4, 0))
		 RETURNING `+userColumns,
		email, name, passwordHash, status))
	if err != nil {
		return User{}, classifyUserError(email, err)
	}
	return user, nil
}

// UpdateUser rewrites the mutable columns of a user row.
func (r *Repository) UpdateUser(ctx context.Context, q db.Querier, id int64, email, name string, status int64, isActive bool) (User, error) {
	user, err := scanUser(q.QueryRow(ctx,
		`UPDATE users
		 SET email = $2, name = $3, status_id = NULLIF($4, 0), is_active = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, email, name, status, isActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("staff: user %d: %w", id, httpx.ErrNotFound)
		}
		return User{}, classifyUserError(email, err)
	}
	return user, nil
}

// DeleteUser removes a user row; association rows cascade in the store.
func (r *Repository) DeleteUser(ctx context.Context, q db.Querier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("staff: user %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// LoadAssociations reads the full stored association state for one user.
func (r *Repository) LoadAssociations(ctx context.Context, q db.Querier, userID int64) (Associations, error) {
	var (
		assoc Associations
		err   error
	)
	if assoc.Memberships, err = memberships.Load(ctx, q, userID); err != nil {
		return Associations{}, err
	}
	if assoc.Contacts, err = contactValues.Load(ctx, q, userID); err != nil {
		return Associations{}, err
	}
	if assoc.Properties, err = stringProperties.Load(ctx, q, userID); err != nil {
		return Associations{}, err
	}
	if assoc.References, err = userReferences.Load(ctx, q, userID); err != nil {
		return Associations{}, err
	}
	return assoc, nil
}

func classifyUserError(email string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("staff: email %s already taken: %w", email, httpx.ErrValidation)
		case "23503":
			return fmt.Errorf("staff: user row: %w", httpx.ErrValidation)
		}
	}
	return err
}
