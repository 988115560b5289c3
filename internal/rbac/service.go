package rbac

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/campuscore/campuscore/internal/shared"
)

// RoleSource resolves the active, non-expired role IDs held by a user.
type RoleSource interface {
	ActiveRoleIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error)
}

// AuditRecorder captures admin mutations. A nil recorder disables auditing.
type AuditRecorder interface {
	Record(ctx context.Context, identity *shared.Identity, action, entity, entityID, detail string)
}

// Service orchestrates permission resolution and grant administration.
type Service struct {
	repo    RepositoryPort
	roles   RoleSource
	auditor AuditRecorder
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, roles RoleSource) *Service {
	return &Service{repo: repo, roles: roles, now: time.Now}
}

// WithAudit enables audit recording for grant mutations.
func (s *Service) WithAudit(auditor AuditRecorder) *Service {
	s.auditor = auditor
	return s
}

func (s *Service) audit(ctx context.Context, action, entityID, detail string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Record(ctx, shared.IdentityFromContext(ctx), action, "grant", entityID, detail)
}

// Resolve returns the stored permission set for (role, menu), or an all-false
// set when no grant exists. Absence of data is denial, not an error.
func (s *Service) Resolve(ctx context.Context, roleID, menuID int64) (PermissionSet, error) {
	grant, err := s.repo.GetGrant(ctx, roleID, menuID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PermissionSet{}, nil
		}
		return PermissionSet{}, err
	}
	return grant.Permissions, nil
}

// EffectiveSet resolves the caller's combined permissions on a menu. Multiple
// active roles union (logical OR) their flags: a capability granted by any one
// role is granted. Only active, non-expired role assignments count.
func (s *Service) EffectiveSet(ctx context.Context, userID, menuID int64) (PermissionSet, error) {
	roleIDs, err := s.roles.ActiveRoleIDs(ctx, userID, s.now())
	if err != nil {
		return PermissionSet{}, err
	}
	var effective PermissionSet
	for _, roleID := range roleIDs {
		set, err := s.Resolve(ctx, roleID, menuID)
		if err != nil {
			return PermissionSet{}, err
		}
		effective = effective.Union(set)
	}
	return effective, nil
}

// ListGrants returns all grants held by a role.
func (s *Service) ListGrants(ctx context.Context, roleID int64) ([]Grant, error) {
	return s.repo.ListGrants(ctx, roleID)
}

// AssignGrants replaces the role's grants for the given menus wholesale.
func (s *Service) AssignGrants(ctx context.Context, roleID int64, grants []Grant) error {
	for i := range grants {
		grants[i].RoleID = roleID
	}
	if err := s.repo.ReplaceGrants(ctx, roleID, grants); err != nil {
		return err
	}
	s.audit(ctx, "grant.assign", strconv.FormatInt(roleID, 10),
		strconv.Itoa(len(grants))+" menus")
	return nil
}

// RevokeGrant removes a single (role, menu) grant.
func (s *Service) RevokeGrant(ctx context.Context, roleID, menuID int64) error {
	if err := s.repo.DeleteGrant(ctx, roleID, menuID); err != nil {
		return err
	}
	s.audit(ctx, "grant.revoke", strconv.FormatInt(roleID, 10),
		"menu "+strconv.FormatInt(menuID, 10))
	return nil
}
