package employees

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository errors surfaced to the service layer.
var (
	ErrNotFound  = errors.New("employees: not found")
	ErrDuplicate = errors.New("employees: staff number already in use")
)

// ListFilter narrows a paged employee listing.
type ListFilter struct {
	Department string
	Status     string
	Page       int
	PerPage    int
}

// RepositoryPort defines data access methods for employees.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (*Employee, error)
	FindByStaffNo(ctx context.Context, staffNo string) (*Employee, error)
	List(ctx context.Context, filter ListFilter) ([]Employee, int, error)
	ListActive(ctx context.Context) ([]Employee, error)
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
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

const employeeColumns = `id, staff_no, first_name, last_name, email, phone, designation, department, salary_grade, status, hired_at, created_at, updated_at`

// Get fetches an employee by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	return scanEmployee(row)
}

// FindByStaffNo fetches an employee by staff number.
func (r *Repository) FindByStaffNo(ctx context.Context, staffNo string) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE staff_no = $1`, staffNo)
	return scanEmployee(row)
}

// List returns a page of employees plus the total matching count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Employee, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Department != "" {
		args = append(args, filter.Department)
		where += ` AND department = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM employees`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	rows, err := r.pool.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees`+where+
			` ORDER BY staff_no LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var employees []Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, *employee)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// ListActive returns every active employee, used by payroll runs.
func (r *Repository) ListActive(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees WHERE status = $1 ORDER BY staff_no`, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var employees []Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *employee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// Create inserts a new employee.
func (r *Repository) Create(ctx context.Context, employee *Employee) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO employees (staff_no, first_name, last_name, email, phone, designation, department, salary_grade, status, hired_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING `+employeeColumns,
		employee.StaffNo, employee.FirstName, employee.LastName, employee.Email, employee.Phone,
		employee.Designation, employee.Department, employee.SalaryGrade, employee.Status, employee.HiredAt,
	)
	created, err := scanEmployee(row)
	if err != nil {
		return nil, mapEmployeeError(err)
	}
	return created, nil
}

// Update writes mutable fields. The staff number is immutable.
func (r *Repository) Update(ctx context.Context, employee *Employee) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE employees
		SET first_name = $2, last_name = $3, email = $4, phone = $5, designation = $6,
		    department = $7, salary_grade = $8, status = $9, updated_at = now()
		WHERE id = $1
		RETURNING `+employeeColumns,
		employee.ID, employee.FirstName, employee.LastName, employee.Email, employee.Phone,
		employee.Designation, employee.Department, employee.SalaryGrade, employee.Status,
	)
	updated, err := scanEmployee(row)
	if err != nil {
		return nil, mapEmployeeError(err)
	}
	return updated, nil
}

// Delete removes an employee record.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (*Employee, error) {
	var employee Employee
	err := row.Scan(
		&employee.ID, &employee.StaffNo, &employee.FirstName, &employee.LastName,
		&employee.Email, &employee.Phone, &employee.Designation, &employee.Department,
		&employee.SalaryGrade, &employee.Status, &employee.HiredAt,
		&employee.CreatedAt, &employee.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &employee, nil
}

func mapEmployeeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
