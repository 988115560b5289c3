package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository errors surfaced to the service layer.
var (
	ErrNotFound  = errors.New("roles: not found")
	ErrDuplicate = errors.New("roles: name already exists")
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	List(ctx context.Context) ([]Role, error)
	Get(ctx context.Context, id int64) (*Role, error)
	Create(ctx context.Context, role *Role) (*Role, error)
	Update(ctx context.Context, role *Role) (*Role, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, name, display_name, description, level, is_active, is_system, created_at, updated_at`

// List returns all roles ordered by level then name.
func (r *Repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY level, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// Get fetches a role by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

// Create inserts a new role.
func (r *Repository) Create(ctx context.Context, role *Role) (*Role, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, display_name, description, level, is_active, is_system, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING `+roleColumns,
		role.Name, role.DisplayName, role.Description, role.Level, role.IsActive, role.IsSystem,
	)
	created, err := scanRole(row)
	if err != nil {
		return nil, mapRoleError(err)
	}
	return created, nil
}

// Update rewrites a role's mutable fields.
func (r *Repository) Update(ctx context.Context, role *Role) (*Role, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE roles
		SET display_name = $2, description = $3, level = $4, is_active = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+roleColumns,
		role.ID, role.DisplayName, role.Description, role.Level, role.IsActive,
	)
	return scanRole(row)
}

// Delete removes a role by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1 AND is_system = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRole(row pgx.Row) (*Role, error) {
	var role Role
	err := row.Scan(
		&role.ID, &role.Name, &role.DisplayName, &role.Description, &role.Level,
		&role.IsActive, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func mapRoleError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
