package students

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campuscore/campuscore/internal/shared"
)

// ErrInvalid marks input validation failures.
var ErrInvalid = errors.New("students: invalid input")

// Service handles student record workflows.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateStudentInput carries the fields for enrolling a student.
type CreateStudentInput struct {
	AdmissionNo   string
	FirstName     string
	LastName      string
	Email         string
	ClassLabel    string
	StreamLabel   string
	GuardianName  string
	GuardianPhone string
}

// UpdateStudentInput carries the mutable student fields.
type UpdateStudentInput struct {
	FirstName     string
	LastName      string
	Email         string
	ClassLabel    string
	StreamLabel   string
	GuardianName  string
	GuardianPhone string
	Status        string
}

// ListInput narrows a paged listing. Search matches the full name with case
// folding, so "MÜLLER" finds "müller".
type ListInput struct {
	Search     string
	ClassLabel string
	Status     string
	Page       int
	PerPage    int
}

// Get returns one student.
func (s *Service) Get(ctx context.Context, id int64) (*Student, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of students with pagination metadata.
func (s *Service) List(ctx context.Context, input ListInput) ([]Student, shared.Pagination, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.PerPage < 1 {
		input.PerPage = 20
	}
	if input.Status != "" && !ValidStatus(input.Status) {
		return nil, shared.Pagination{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, input.Status)
	}
	students, total, err := s.repo.List(ctx, ListFilter{
		Search:     FoldName(strings.TrimSpace(input.Search)),
		ClassLabel: strings.TrimSpace(input.ClassLabel),
		Status:     input.Status,
		Page:       input.Page,
		PerPage:    input.PerPage,
	})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return students, shared.NewPagination(input.Page, input.PerPage, total), nil
}

// Create enrolls a student. New records start active.
func (s *Service) Create(ctx context.Context, input CreateStudentInput) (*Student, error) {
	admissionNo := strings.TrimSpace(input.AdmissionNo)
	if admissionNo == "" {
		return nil, fmt.Errorf("%w: admission number is required", ErrInvalid)
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrInvalid)
	}
	return s.repo.Create(ctx, &Student{
		AdmissionNo:   admissionNo,
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Email:         strings.TrimSpace(strings.ToLower(input.Email)),
		ClassLabel:    strings.TrimSpace(input.ClassLabel),
		StreamLabel:   strings.TrimSpace(input.StreamLabel),
		GuardianName:  strings.TrimSpace(input.GuardianName),
		GuardianPhone: strings.TrimSpace(input.GuardianPhone),
		Status:        StatusActive,
	})
}

// Update writes mutable fields. Admission number never changes.
func (s *Service) Update(ctx context.Context, id int64, input UpdateStudentInput) (*Student, error) {
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
	current.ClassLabel = strings.TrimSpace(input.ClassLabel)
	current.StreamLabel = strings.TrimSpace(input.StreamLabel)
	current.GuardianName = strings.TrimSpace(input.GuardianName)
	current.GuardianPhone = strings.TrimSpace(input.GuardianPhone)
	current.Status = input.Status
	return s.repo.Update(ctx, current)
}

// Delete removes a student record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
