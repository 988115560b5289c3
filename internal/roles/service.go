package roles

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/campuscore/campuscore/internal/shared"
)

// ErrSystemRole indicates an attempt to delete a seeded system role.
var ErrSystemRole = errors.New("roles: system roles cannot be deleted")

// CreateRoleInput carries fields for creating a role.
type CreateRoleInput struct {
	Name        string
	DisplayName string
	Description string
	Level       int
}

// UpdateRoleInput carries a role's mutable fields. Name is immutable.
type UpdateRoleInput struct {
	DisplayName string
	Description string
	Level       int
	IsActive    bool
}

// AuditRecorder captures admin mutations. A nil recorder disables auditing.
type AuditRecorder interface {
	Record(ctx context.Context, identity *shared.Identity, action, entity, entityID, detail string)
}

// Service handles role business logic.
type Service struct {
	repo    RepositoryPort
	auditor AuditRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// WithAudit enables audit recording for mutations.
func (s *Service) WithAudit(auditor AuditRecorder) *Service {
	s.auditor = auditor
	return s
}

func (s *Service) audit(ctx context.Context, action, entityID, detail string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Record(ctx, shared.IdentityFromContext(ctx), action, "role", entityID, detail)
}

// RoleExists reports whether an active role with the given ID exists.
func (s *Service) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	role, err := s.repo.Get(ctx, roleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return role.IsActive, nil
}

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

// Get fetches a role by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Role, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a new role.
func (s *Service) Create(ctx context.Context, input CreateRoleInput) (*Role, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("roles: name required")
	}
	role, err := s.repo.Create(ctx, &Role{
		Name:        name,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Description: strings.TrimSpace(input.Description),
		Level:       input.Level,
		IsActive:    true,
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "role.create", strconv.FormatInt(role.ID, 10), role.Name)
	return role, nil
}

// Update rewrites a role's mutable fields.
func (s *Service) Update(ctx context.Context, id int64, input UpdateRoleInput) (*Role, error) {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	role.DisplayName = strings.TrimSpace(input.DisplayName)
	role.Description = strings.TrimSpace(input.Description)
	role.Level = input.Level
	role.IsActive = input.IsActive
	updated, err := s.repo.Update(ctx, role)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "role.update", strconv.FormatInt(id, 10), updated.Name)
	return updated, nil
}

// Delete removes a role. System roles are protected.
func (s *Service) Delete(ctx context.Context, id int64) error {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return ErrSystemRole
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "role.delete", strconv.FormatInt(id, 10), role.Name)
	return nil
}
