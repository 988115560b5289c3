package audit

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access methods for the audit log.
type RepositoryPort interface {
	Insert(ctx context.Context, entry *Entry) error
	Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error)
	All(ctx context.Context, filters TimelineFilters) ([]Entry, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const entryColumns = `id, actor, actor_id, action, entity, entity_id, detail, at`

// Insert appends an entry.
func (r *Repository) Insert(ctx context.Context, entry *Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (actor, actor_id, action, entity, entity_id, detail, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.Actor, entry.ActorID, entry.Action, entry.Entity, entry.EntityID, entry.Detail, entry.At,
	)
	return err
}

// Window returns a page of entries newest first.
func (r *Repository) Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	where, args := buildWhere(filters)
	args = append(args, limit, offset)
	sql := `SELECT ` + entryColumns + ` FROM audit_log` + where +
		` ORDER BY at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	return r.query(ctx, sql, args...)
}

// All returns every matching entry newest first, for exports.
func (r *Repository) All(ctx context.Context, filters TimelineFilters) ([]Entry, error) {
	where, args := buildWhere(filters)
	return r.query(ctx, `SELECT `+entryColumns+` FROM audit_log`+where+` ORDER BY at DESC`, args...)
}

func buildWhere(filters TimelineFilters) (string, []any) {
	where := ` WHERE 1=1`
	args := []any{}
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		where += ` AND at >= $` + strconv.Itoa(len(args))
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		where += ` AND at <= $` + strconv.Itoa(len(args))
	}
	if filters.Actor != "" {
		args = append(args, filters.Actor)
		where += ` AND actor = $` + strconv.Itoa(len(args))
	}
	if filters.Entity != "" {
		args = append(args, filters.Entity)
		where += ` AND entity = $` + strconv.Itoa(len(args))
	}
	if filters.Action != "" {
		args = append(args, filters.Action)
		where += ` AND action = $` + strconv.Itoa(len(args))
	}
	return where, args
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.ActorID, &entry.Action,
			&entry.Entity, &entry.EntityID, &entry.Detail, &entry.At); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ RepositoryPort = (*Repository)(nil)
