package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository errors surfaced to the service layer.
var (
	ErrNotFound  = errors.New("users: not found")
	ErrDuplicate = errors.New("users: email already in use")
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, password_hash, is_active, created_at, updated_at`

// List returns all users ordered by ID.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
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
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Get fetches a user by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *User) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING `+userColumns,
		user.Email, user.Name, user.PasswordHash, user.IsActive,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, mapUserError(err)
	}
	return created, nil
}

// Update writes mutable fields. Email changes are allowed; the unique index
// still guards collisions.
func (r *Repository) Update(ctx context.Context, user *User) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET email = $2, name = $3, is_active = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, user.Email, user.Name, user.IsActive,
	)
	updated, err := scanUser(row)
	if err != nil {
		return nil, mapUserError(err)
	}
	return updated, nil
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func mapUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
