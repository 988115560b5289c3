package assignments

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuscore/campuscore/internal/platform/db"
)

// Repository errors surfaced to the service layer.
var (
	ErrNotFound  = errors.New("assignments: not found")
	ErrDuplicate = errors.New("assignments: user already holds role")
)

// RepositoryPort defines data access methods for role assignments.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (*Assignment, error)
	ListForUser(ctx context.Context, userID int64) ([]Assignment, error)
	Create(ctx context.Context, assignment *Assignment) (*Assignment, error)
	UpdateVersioned(ctx context.Context, assignment *Assignment) (*Assignment, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const assignmentColumns = `id, user_id, role_id, assigned_at, expires_at, is_active, version, created_at, updated_at`

// Get fetches an assignment by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Assignment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM user_role_assignments WHERE id = $1`, id)
	return scanAssignment(row)
}

// ListForUser returns every assignment row for a user, revoked ones included.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+assignmentColumns+` FROM user_role_assignments WHERE user_id = $1 ORDER BY assigned_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// Create inserts a new assignment at version 1.
func (r *Repository) Create(ctx context.Context, assignment *Assignment) (*Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_role_assignments (user_id, role_id, assigned_at, expires_at, is_active, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, 1, now(), now())
		RETURNING `+assignmentColumns,
		assignment.UserID, assignment.RoleID, assignment.AssignedAt, assignment.ExpiresAt,
	)
	created, err := scanAssignment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

// UpdateVersioned writes the assignment's mutable fields guarded by its
// version. A concurrent writer that committed first makes the version stale;
// the caller is expected to reload and retry.
func (r *Repository) UpdateVersioned(ctx context.Context, assignment *Assignment) (*Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE user_role_assignments
		SET expires_at = $3, is_active = $4, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+assignmentColumns,
		assignment.ID, assignment.Version, assignment.ExpiresAt, assignment.IsActive,
	)
	updated, err := scanAssignment(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	// No row matched: either the assignment is gone or the version is stale.
	if _, getErr := r.Get(ctx, assignment.ID); getErr != nil {
		return nil, getErr
	}
	return nil, db.ErrStaleVersion
}

// ActiveRoleIDs returns distinct role IDs from active, non-expired
// assignments as of now.
func (r *Repository) ActiveRoleIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT role_id FROM user_role_assignments
		WHERE user_id = $1 AND is_active = TRUE AND (expires_at IS NULL OR expires_at >= $2)`,
		userID, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func scanAssignment(row pgx.Row) (*Assignment, error) {
	var assignment Assignment
	err := row.Scan(
		&assignment.ID, &assignment.UserID, &assignment.RoleID, &assignment.AssignedAt,
		&assignment.ExpiresAt, &assignment.IsActive, &assignment.Version,
		&assignment.CreatedAt, &assignment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

var _ RepositoryPort = (*Repository)(nil)
