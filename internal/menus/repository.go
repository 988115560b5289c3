package menus

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository errors surfaced to the service layer.
var (
	ErrNotFound    = errors.New("menus: not found")
	ErrDuplicate   = errors.New("menus: name already exists")
	ErrHasChildren = errors.New("menus: node has children")
)

// RepositoryPort defines data access methods for the menu catalog.
type RepositoryPort interface {
	FindByName(ctx context.Context, name string) (*MenuNode, error)
	FindByID(ctx context.Context, id int64) (*MenuNode, error)
	ListAll(ctx context.Context) ([]MenuNode, error)
	ListChildren(ctx context.Context, parentID int64) ([]MenuNode, error)
	Create(ctx context.Context, node *MenuNode) (*MenuNode, error)
	Update(ctx context.Context, node *MenuNode) (*MenuNode, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence for menu nodes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const menuColumns = `id, name, display_name, icon, route, component, node_type, sort_order, is_active, is_visible, parent_id, created_at, updated_at`

// FindByName fetches a node by its globally unique, case-insensitive name.
func (r *Repository) FindByName(ctx context.Context, name string) (*MenuNode, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_nodes WHERE lower(name) = lower($1)`, name)
	return scanNode(row)
}

// FindByID fetches a node by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*MenuNode, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_nodes WHERE id = $1`, id)
	return scanNode(row)
}

// ListAll returns the full catalog ordered by parent then sort order.
func (r *Repository) ListAll(ctx context.Context) ([]MenuNode, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+menuColumns+` FROM menu_nodes ORDER BY parent_id NULLS FIRST, sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNodes(rows)
}

// ListChildren returns direct children of a node ordered by sort order.
func (r *Repository) ListChildren(ctx context.Context, parentID int64) ([]MenuNode, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+menuColumns+` FROM menu_nodes WHERE parent_id = $1 ORDER BY sort_order, id`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNodes(rows)
}

// Create inserts a new node.
func (r *Repository) Create(ctx context.Context, node *MenuNode) (*MenuNode, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO menu_nodes (name, display_name, icon, route, component, node_type, sort_order, is_active, is_visible, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING `+menuColumns,
		node.Name, node.DisplayName, node.Icon, node.Route, node.Component, node.Type,
		node.SortOrder, node.IsActive, node.IsVisible, node.ParentID, now,
	)
	created, err := scanNode(row)
	if err != nil {
		return nil, mapConstraintError(err)
	}
	return created, nil
}

// Update rewrites the mutable display fields of a node. Name and node_type are
// intentionally absent from the statement.
func (r *Repository) Update(ctx context.Context, node *MenuNode) (*MenuNode, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE menu_nodes
		SET display_name = $2, icon = $3, route = $4, component = $5, sort_order = $6,
		    is_active = $7, is_visible = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+menuColumns,
		node.ID, node.DisplayName, node.Icon, node.Route, node.Component,
		node.SortOrder, node.IsActive, node.IsVisible,
	)
	return scanNode(row)
}

// Delete removes a node. Nodes with children are protected by a RESTRICT
// foreign key; the violation surfaces as ErrHasChildren.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_nodes WHERE id = $1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNode(row pgx.Row) (*MenuNode, error) {
	var node MenuNode
	err := row.Scan(
		&node.ID, &node.Name, &node.DisplayName, &node.Icon, &node.Route, &node.Component,
		&node.Type, &node.SortOrder, &node.IsActive, &node.IsVisible, &node.ParentID,
		&node.CreatedAt, &node.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &node, nil
}

func collectNodes(rows pgx.Rows) ([]MenuNode, error) {
	var nodes []MenuNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrHasChildren
		}
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
