package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuscore/campuscore/internal/shared"
)

// ErrInvalid marks input validation failures.
var ErrInvalid = errors.New("employees: invalid input")

// Service handles employee record workflows.
type Service struct {
	repo RepositoryPort

	now func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateEmployeeInput carries the fields for registering an employee.
type CreateEmployeeInput struct {
	StaffNo     string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Designation string
	Department  string
	SalaryGrade string
	HiredAt     time.Time
}

// UpdateEmployeeInput carries the mutable employee fields.
type UpdateEmployeeInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Designation string
	Department  string
	SalaryGrade string
	Status      string
}

// ListInput narrows a paged listing.
type ListInput struct {
	Department string
	Status     string
	Page       int
	PerPage    int
}

// Get returns one employee.
func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	return s.repo.Get(ctx, id)
}

// ListActive returns every active employee, regardless of paging. Payroll
// runs use it to enumerate the staff a period pays.
func (s *Service) ListActive(ctx context.Context) ([]Employee, error) {
	return s.repo.ListActive(ctx)
}

// List returns a page of employees with pagination metadata.
func (s *Service) List(ctx context.Context, input ListInput) ([]Employee, shared.Pagination, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.PerPage < 1 {
		input.PerPage = 20
	}
	if input.Status != "" && !ValidStatus(input.Status) {
		return nil, shared.Pagination{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, input.Status)
	}
	employees, total, err := s.repo.List(ctx, ListFilter{
		Department: strings.TrimSpace(input.Department),
		Status:     input.Status,
		Page:       input.Page,
		PerPage:    input.PerPage,
	})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return employees, shared.NewPagination(input.Page, input.PerPage, total), nil
}

// Create registers an employee. New records start active; a zero HiredAt
// defaults to today.
func (s *Service) Create(ctx context.Context, input CreateEmployeeInput) (*Employee, error) {
	staffNo := strings.TrimSpace(input.StaffNo)
	if staffNo == "" {
		return nil, fmt.Errorf("%w: staff number is required", ErrInvalid)
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrInvalid)
	}
	hiredAt := input.HiredAt
	if hiredAt.IsZero() {
		hiredAt = s.now()
	}
	return s.repo.Create(ctx, &Employee{
		StaffNo:     staffNo,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Email:       strings.TrimSpace(strings.ToLower(input.Email)),
		Phone:       strings.TrimSpace(input.Phone),
		Designation: strings.TrimSpace(input.Designation),
		Department:  strings.TrimSpace(input.Department),
		SalaryGrade: strings.TrimSpace(input.SalaryGrade),
		Status:      StatusActive,
		HiredAt:     hiredAt,
	})
}

// Update writes mutable fields. Staff number never changes.
func (s *Service) Update(ctx context.Context, id int64, input UpdateEmployeeInput) (*Employee, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ValidStatus(input.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, input.Status)
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrInvalid)
	}
	current.FirstName = strings.TrimSpace(input.FirstName)
	current.LastName = strings.TrimSpace(input.LastName)
	current.Email = strings.TrimSpace(strings.ToLower(input.Email))
	current.Phone = strings.TrimSpace(input.Phone)
	current.Designation = strings.TrimSpace(input.Designation)
	current.Department = strings.TrimSpace(input.Department)
	current.SalaryGrade = strings.TrimSpace(input.SalaryGrade)
	current.Status = input.Status
	return s.repo.Update(ctx, current)
}

// Delete removes an employee record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
