package rbac

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuscore/campuscore/internal/platform/db"
)

// ErrNotFound indicates that the requested grant does not exist.
var ErrNotFound = errors.New("rbac: not found")

// ErrUnknownReference indicates a grant naming a role or menu that does not exist.
var ErrUnknownReference = errors.New("rbac: unknown role or menu")

// RepositoryPort defines data access methods for permission grants.
type RepositoryPort interface {
	GetGrant(ctx context.Context, roleID, menuID int64) (*Grant, error)
	ListGrants(ctx context.Context, roleID int64) ([]Grant, error)
	ReplaceGrants(ctx context.Context, roleID int64, grants []Grant) error
	DeleteGrant(ctx context.Context, roleID, menuID int64) error
}

// Repository provides PostgreSQL backed persistence for grants.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const grantColumns = `role_id, menu_id, can_view, can_add, can_edit, can_delete, can_export, can_print, can_approve, can_reject, created_at, updated_at`

// GetGrant fetches the grant for a (role, menu) pair.
func (r *Repository) GetGrant(ctx context.Context, roleID, menuID int64) (*Grant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+grantColumns+` FROM permission_grants WHERE role_id = $1 AND menu_id = $2`, roleID, menuID)
	return scanGrant(row)
}

// ListGrants returns all grants held by a role.
func (r *Repository) ListGrants(ctx context.Context, roleID int64) ([]Grant, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+grantColumns+` FROM permission_grants WHERE role_id = $1 ORDER BY menu_id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var grants []Grant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, *grant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grants, nil
}

// ReplaceGrants rewrites the role's grants for the menus named in the input,
// leaving grants on other menus untouched. Runs in one transaction.
func (r *Repository) ReplaceGrants(ctx context.Context, roleID int64, grants []Grant) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		for _, grant := range grants {
			if _, err := tx.Exec(ctx, `DELETE FROM permission_grants WHERE role_id = $1 AND menu_id = $2`, roleID, grant.MenuID); err != nil {
				return err
			}
			set := grant.Permissions
			if _, err := tx.Exec(ctx, `
				INSERT INTO permission_grants (`+grantColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
				roleID, grant.MenuID, set.View, set.Add, set.Edit, set.Delete,
				set.Export, set.Print, set.Approve, set.Reject, now,
			); err != nil {
				return mapConstraintError(err)
			}
		}
		return nil
	})
}

// DeleteGrant removes the grant for a (role, menu) pair.
func (r *Repository) DeleteGrant(ctx context.Context, roleID, menuID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permission_grants WHERE role_id = $1 AND menu_id = $2`, roleID, menuID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrUnknownReference
	}
	return err
}

func scanGrant(row pgx.Row) (*Grant, error) {
	var grant Grant
	set := &grant.Permissions
	err := row.Scan(
		&grant.RoleID, &grant.MenuID, &set.View, &set.Add, &set.Edit, &set.Delete,
		&set.Export, &set.Print, &set.Approve, &set.Reject, &grant.CreatedAt, &grant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &grant, nil
}

var _ RepositoryPort = (*Repository)(nil)
