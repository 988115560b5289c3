package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalid marks input validation failures.
var ErrInvalid = errors.New("users: invalid input")

const minPasswordLength = 8

// Service handles account management workflows.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateUserInput carries the fields for provisioning an account.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	IsActive bool
}

// UpdateUserInput carries the mutable account fields.
type UpdateUserInput struct {
	Email    string
	Name     string
	IsActive bool
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Create provisions an account with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, input CreateUserInput) (*User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalid)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	return s.repo.Create(ctx, &User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hash),
		IsActive:     input.IsActive,
	})
}

// Update writes profile fields and the active flag.
func (s *Service) Update(ctx context.Context, id int64, input UpdateUserInput) (*User, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalid)
	}
	current.Email = email
	current.Name = strings.TrimSpace(input.Name)
	current.IsActive = input.IsActive
	return s.repo.Update(ctx, current)
}

// ChangePassword replaces the account's password hash.
func (s *Service) ChangePassword(ctx context.Context, id int64, password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("users: hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// Deactivate disables sign-in for an account. The row is preserved.
func (s *Service) Deactivate(ctx context.Context, id int64) (*User, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	current.IsActive = false
	return s.repo.Update(ctx, current)
}
