package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("attendance: not found")

// RepositoryPort defines data access methods for attendance.
type RepositoryPort interface {
	Upsert(ctx context.Context, record *Record) (*Record, error)
	Get(ctx context.Context, studentID int64, date time.Time) (*Record, error)
	ListByDate(ctx context.Context, date time.Time) ([]Record, error)
	ListRange(ctx context.Context, from, to time.Time) ([]Record, error)
	InsertClockEvent(ctx context.Context, event *ClockEvent) (*ClockEvent, error)
	ListClockEvents(ctx context.Context, employeeID int64, from, to time.Time) ([]ClockEvent, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, student_id, date, status, source, device_id, note, marked_by, created_at, updated_at`

// Upsert writes the record, replacing any existing row for the same student
// and day.
func (r *Repository) Upsert(ctx context.Context, record *Record) (*Record, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO attendance_records (student_id, date, status, source, device_id, note, marked_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (student_id, date) DO UPDATE
		SET status = EXCLUDED.status, source = EXCLUDED.source, device_id = EXCLUDED.device_id,
		    note = EXCLUDED.note, marked_by = EXCLUDED.marked_by, updated_at = now()
		RETURNING `+recordColumns,
		record.StudentID, DateOnly(record.Date), record.Status, record.Source,
		record.DeviceID, record.Note, record.MarkedBy,
	)
	return scanRecord(row)
}

// Get fetches one student's record for a day.
func (r *Repository) Get(ctx context.Context, studentID int64, date time.Time) (*Record, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE student_id = $1 AND date = $2`,
		studentID, DateOnly(date),
	)
	return scanRecord(row)
}

// ListByDate returns all records for a day.
func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]Record, error) {
	return r.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE date = $1 ORDER BY student_id`,
		DateOnly(date),
	)
}

// ListRange returns all records between from and to inclusive.
func (r *Repository) ListRange(ctx context.Context, from, to time.Time) ([]Record, error) {
	return r.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE date BETWEEN $1 AND $2 ORDER BY date, student_id`,
		DateOnly(from), DateOnly(to),
	)
}

// InsertClockEvent appends an employee clock event.
func (r *Repository) InsertClockEvent(ctx context.Context, event *ClockEvent) (*ClockEvent, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clock_events (employee_id, device_id, direction, clocked_at, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, employee_id, device_id, direction, clocked_at, created_at`,
		event.EmployeeID, event.DeviceID, event.Direction, event.ClockedAt,
	)
	var out ClockEvent
	if err := row.Scan(&out.ID, &out.EmployeeID, &out.DeviceID, &out.Direction, &out.ClockedAt, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListClockEvents returns an employee's clock events in a window.
func (r *Repository) ListClockEvents(ctx context.Context, employeeID int64, from, to time.Time) ([]ClockEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, employee_id, device_id, direction, clocked_at, created_at
		FROM clock_events
		WHERE employee_id = $1 AND clocked_at BETWEEN $2 AND $3
		ORDER BY clocked_at`,
		employeeID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []ClockEvent
	for rows.Next() {
		var event ClockEvent
		if err := rows.Scan(&event.ID, &event.EmployeeID, &event.DeviceID, &event.Direction, &event.ClockedAt, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *Repository) queryRecords(ctx context.Context, sql string, args ...any) ([]Record, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var record Record
	err := row.Scan(
		&record.ID, &record.StudentID, &record.Date, &record.Status, &record.Source,
		&record.DeviceID, &record.Note, &record.MarkedBy, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

var _ RepositoryPort = (*Repository)(nil)
