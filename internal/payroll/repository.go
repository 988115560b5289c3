package payroll

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuscore/campuscore/internal/platform/db"
)

// Repository errors surfaced to the service layer.
var (
	ErrNotFound     = errors.New("payroll: not found")
	ErrDuplicateRun = errors.New("payroll: run already exists for period")
)

// RepositoryPort defines data access methods for payroll.
type RepositoryPort interface {
	GetStructure(ctx context.Context, employeeID int64) (*SalaryStructure, error)
	UpsertStructure(ctx context.Context, structure *SalaryStructure) (*SalaryStructure, error)
	CreateRun(ctx context.Context, run *Run) (*Run, error)
	GetRun(ctx context.Context, id int64) (*Run, error)
	ListRuns(ctx context.Context) ([]Run, error)
}

// Repository provides PostgreSQL backed persistence. Allowance components
// live in a jsonb column beside the base amount.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetStructure fetches an employee's salary structure.
func (r *Repository) GetStructure(ctx context.Context, employeeID int64) (*SalaryStructure, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, employee_id, base, allowances, updated_at FROM salary_structures WHERE employee_id = $1`,
		employeeID,
	)
	var structure SalaryStructure
	err := row.Scan(&structure.ID, &structure.EmployeeID, &structure.Base, &structure.Allowances, &structure.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &structure, nil
}

// UpsertStructure writes an employee's salary structure, replacing any
// previous one.
func (r *Repository) UpsertStructure(ctx context.Context, structure *SalaryStructure) (*SalaryStructure, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO salary_structures (employee_id, base, allowances, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (employee_id) DO UPDATE
		SET base = EXCLUDED.base, allowances = EXCLUDED.allowances, updated_at = now()
		RETURNING id, employee_id, base, allowances, updated_at`,
		structure.EmployeeID, structure.Base, structure.Allowances,
	)
	var stored SalaryStructure
	if err := row.Scan(&stored.ID, &stored.EmployeeID, &stored.Base, &stored.Allowances, &stored.UpdatedAt); err != nil {
		return nil, err
	}
	return &stored, nil
}

// CreateRun persists a run and its payslips in one transaction.
func (r *Repository) CreateRun(ctx context.Context, run *Run) (*Run, error) {
	stored := *run
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO payroll_runs (period, status, created_at)
			VALUES ($1, $2, now())
			RETURNING id, created_at`,
			run.Period, run.Status,
		)
		if err := row.Scan(&stored.ID, &stored.CreatedAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateRun
			}
			return err
		}
		for i := range stored.Payslips {
			slip := &stored.Payslips[i]
			slip.RunID = stored.ID
			row := tx.QueryRow(ctx, `
				INSERT INTO payslips (run_id, employee_id, gross, deductions, net)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`,
				slip.RunID, slip.EmployeeID, slip.Gross, slip.Deductions, slip.Net,
			)
			if err := row.Scan(&slip.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetRun fetches a run with its payslips.
func (r *Repository) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, period, status, created_at FROM payroll_runs WHERE id = $1`, id)
	var run Run
	if err := row.Scan(&run.ID, &run.Period, &run.Status, &run.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, run_id, employee_id, gross, deductions, net FROM payslips WHERE run_id = $1 ORDER BY employee_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var slip Payslip
		if err := rows.Scan(&slip.ID, &slip.RunID, &slip.EmployeeID, &slip.Gross, &slip.Deductions, &slip.Net); err != nil {
			return nil, err
		}
		run.Payslips = append(run.Payslips, slip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns runs newest first, without payslips.
func (r *Repository) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, period, status, created_at FROM payroll_runs ORDER BY period DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Period, &run.Status, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

var _ RepositoryPort = (*Repository)(nil)
