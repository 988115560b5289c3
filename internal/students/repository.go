package students

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
	ErrNotFound  = errors.New("students: not found")
	ErrDuplicate = errors.New("students: admission number or email already in use")
)

// ListFilter narrows a paged student listing. Search is matched against the
// folded full name; the repository expects it pre-folded via FoldName.
type ListFilter struct {
	Search     string
	ClassLabel string
	Status     string
	Page       int
	PerPage    int
}

// RepositoryPort defines data access methods for students.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (*Student, error)
	FindByAdmissionNo(ctx context.Context, admissionNo string) (*Student, error)
	List(ctx context.Context, filter ListFilter) ([]Student, int, error)
	Create(ctx context.Context, student *Student) (*Student, error)
	Update(ctx context.Context, student *Student) (*Student, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence. search_name holds the
// case-folded full name and is rewritten on every insert and update.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const studentColumns = `id, admission_no, first_name, last_name, email, class_label, stream_label, guardian_name, guardian_phone, status, created_at, updated_at`

// Get fetches a student by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Student, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	return scanStudent(row)
}

// FindByAdmissionNo fetches a student by admission number.
func (r *Repository) FindByAdmissionNo(ctx context.Context, admissionNo string) (*Student, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE admission_no = $1`, admissionNo)
	return scanStudent(row)
}

// List returns a page of students plus the total matching count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Student, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += ` AND search_name LIKE $` + strconv.Itoa(len(args))
	}
	if filter.ClassLabel != "" {
		args = append(args, filter.ClassLabel)
		where += ` AND class_label = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM students`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students`+where+
			` ORDER BY admission_no LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var students []Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, *student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// Create inserts a new student.
func (r *Repository) Create(ctx context.Context, student *Student) (*Student, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO students (admission_no, first_name, last_name, email, class_label, stream_label, guardian_name, guardian_phone, status, search_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING `+studentColumns,
		student.AdmissionNo, student.FirstName, student.LastName, student.Email,
		student.ClassLabel, student.StreamLabel, student.GuardianName, student.GuardianPhone,
		student.Status, FoldName(student.FullName()),
	)
	created, err := scanStudent(row)
	if err != nil {
		return nil, mapStudentError(err)
	}
	return created, nil
}

// Update writes mutable fields. The admission number is immutable.
func (r *Repository) Update(ctx context.Context, student *Student) (*Student, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE students
		SET first_name = $2, last_name = $3, email = $4, class_label = $5, stream_label = $6,
		    guardian_name = $7, guardian_phone = $8, status = $9, search_name = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+studentColumns,
		student.ID, student.FirstName, student.LastName, student.Email,
		student.ClassLabel, student.StreamLabel, student.GuardianName, student.GuardianPhone,
		student.Status, FoldName(student.FullName()),
	)
	updated, err := scanStudent(row)
	if err != nil {
		return nil, mapStudentError(err)
	}
	return updated, nil
}

// Delete removes a student record.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStudent(row pgx.Row) (*Student, error) {
	var student Student
	err := row.Scan(
		&student.ID, &student.AdmissionNo, &student.FirstName, &student.LastName,
		&student.Email, &student.ClassLabel, &student.StreamLabel,
		&student.GuardianName, &student.GuardianPhone, &student.Status,
		&student.CreatedAt, &student.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &student, nil
}

func mapStudentError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
