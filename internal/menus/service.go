package menus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/campuscore/campuscore/internal/shared"
)

// ErrInvalid marks rejected catalog input.
var ErrInvalid = errors.New("menus: invalid input")

// CreateNodeInput carries fields for creating a catalog node.
type CreateNodeInput struct {
	Name        string
	DisplayName string
	Icon        string
	Route       string
	Component   string
	Type        NodeType
	SortOrder   int
	IsActive    bool
	IsVisible   bool
	ParentID    *int64
}

// UpdateNodeInput carries the mutable fields of a node. Name and type are
// immutable post-creation.
type UpdateNodeInput struct {
	DisplayName string
	Icon        string
	Route       string
	Component   string
	SortOrder   int
	IsActive    bool
	IsVisible   bool
}

// AuditRecorder captures admin mutations. A nil recorder disables auditing.
type AuditRecorder interface {
	Record(ctx context.Context, identity *shared.Identity, action, entity, entityID, detail string)
}

// Service handles menu catalog business logic.
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
	s.auditor.Record(ctx, shared.IdentityFromContext(ctx), action, "menu", entityID, detail)
}

// FindByName resolves a node by name, case-insensitively.
func (s *Service) FindByName(ctx context.Context, name string) (*MenuNode, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNotFound
	}
	return s.repo.FindByName(ctx, name)
}

// Get fetches a node by ID.
func (s *Service) Get(ctx context.Context, id int64) (*MenuNode, error) {
	return s.repo.FindByID(ctx, id)
}

// ListAll returns the whole catalog as a flat ordered sequence.
func (s *Service) ListAll(ctx context.Context) ([]MenuNode, error) {
	return s.repo.ListAll(ctx)
}

// ListChildren returns a node's direct children ordered by sort order.
func (s *Service) ListChildren(ctx context.Context, parentID int64) ([]MenuNode, error) {
	return s.repo.ListChildren(ctx, parentID)
}

// Create validates and inserts a new catalog node.
func (s *Service) Create(ctx context.Context, input CreateNodeInput) (*MenuNode, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalid)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown node type %q", ErrInvalid, input.Type)
	}
	if input.ParentID != nil {
		if _, err := s.repo.FindByID(ctx, *input.ParentID); err != nil {
			return nil, err
		}
	}
	node, err := s.repo.Create(ctx, &MenuNode{
		Name:        input.Name,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Icon:        input.Icon,
		Route:       input.Route,
		Component:   input.Component,
		Type:        input.Type,
		SortOrder:   input.SortOrder,
		IsActive:    input.IsActive,
		IsVisible:   input.IsVisible,
		ParentID:    input.ParentID,
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "menu.create", strconv.FormatInt(node.ID, 10), node.Name)
	return node, nil
}

// Update rewrites a node's display fields, sort order and flags.
func (s *Service) Update(ctx context.Context, id int64, input UpdateNodeInput) (*MenuNode, error) {
	node, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	node.DisplayName = strings.TrimSpace(input.DisplayName)
	node.Icon = input.Icon
	node.Route = input.Route
	node.Component = input.Component
	node.SortOrder = input.SortOrder
	node.IsActive = input.IsActive
	node.IsVisible = input.IsVisible
	updated, err := s.repo.Update(ctx, node)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "menu.update", strconv.FormatInt(id, 10), updated.Name)
	return updated, nil
}

// Delete removes a node. Deleting a node that still has children is rejected.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "menu.delete", strconv.FormatInt(id, 10), "")
	return nil
}
