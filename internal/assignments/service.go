package assignments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/campuscore/campuscore/internal/platform/db"
	"github.com/campuscore/campuscore/internal/shared"
)

// ErrInvalid marks input validation failures.
var ErrInvalid = errors.New("assignments: invalid input")

// RoleChecker verifies that a role exists and is active before assignment.
type RoleChecker interface {
	RoleExists(ctx context.Context, roleID int64) (bool, error)
}

// Service implements assignment workflows. It satisfies rbac.RoleSource so
// permission resolution reads role membership through the same rules the
// admin surface writes it with.
// AuditRecorder captures admin mutations. A nil recorder disables auditing.
type AuditRecorder interface {
	Record(ctx context.Context, identity *shared.Identity, action, entity, entityID, detail string)
}

type Service struct {
	repo    RepositoryPort
	roles   RoleChecker
	auditor AuditRecorder

	now func() time.Time
}

// NewService constructs a service. roles may be nil when existence checks are
// handled upstream.
func NewService(repo RepositoryPort, roles RoleChecker) *Service {
	return &Service{repo: repo, roles: roles, now: time.Now}
}

// WithAudit enables audit recording for mutations.
func (s *Service) WithAudit(auditor AuditRecorder) *Service {
	s.auditor = auditor
	return s
}

func (s *Service) audit(ctx context.Context, action string, a *Assignment) {
	if s.auditor == nil || a == nil {
		return
	}
	detail := "user " + strconv.FormatInt(a.UserID, 10) + " role " + strconv.FormatInt(a.RoleID, 10)
	s.auditor.Record(ctx, shared.IdentityFromContext(ctx), action, "assignment",
		strconv.FormatInt(a.ID, 10), detail)
}

// AssignInput carries the fields for granting a role.
type AssignInput struct {
	UserID    int64      `json:"userId" validate:"required,gt=0"`
	RoleID    int64      `json:"roleId" validate:"required,gt=0"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Assign grants a role to a user. Expiry, if set, must be in the future.
func (s *Service) Assign(ctx context.Context, input AssignInput) (*Assignment, error) {
	now := s.now()
	if input.ExpiresAt != nil && input.ExpiresAt.Before(now) {
		return nil, fmt.Errorf("%w: expiresAt is in the past", ErrInvalid)
	}
	if s.roles != nil {
		ok, err := s.roles.RoleExists(ctx, input.RoleID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: role %d does not exist", ErrInvalid, input.RoleID)
		}
	}
	created, err := s.repo.Create(ctx, &Assignment{
		UserID:     input.UserID,
		RoleID:     input.RoleID,
		AssignedAt: now,
		ExpiresAt:  input.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "assignment.assign", created)
	return created, nil
}

// Get returns a single assignment.
func (s *Service) Get(ctx context.Context, id int64) (*Assignment, error) {
	return s.repo.Get(ctx, id)
}

// ListForUser returns the full assignment history of a user.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Assignment, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Revoke deactivates an assignment. The row is kept so history and audit
// queries still see it. Revoking an already-revoked assignment is a no-op.
func (s *Service) Revoke(ctx context.Context, id int64) (*Assignment, error) {
	var revoked *Assignment
	err := db.RetryOnConflict(ctx, func(int) error {
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !current.IsActive {
			revoked = current
			return nil
		}
		current.IsActive = false
		revoked, err = s.repo.UpdateVersioned(ctx, current)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "assignment.revoke", revoked)
	return revoked, nil
}

// UpdateExpiry moves or clears an assignment's expiry under the version guard.
func (s *Service) UpdateExpiry(ctx context.Context, id int64, expiresAt *time.Time) (*Assignment, error) {
	if expiresAt != nil && expiresAt.Before(s.now()) {
		return nil, fmt.Errorf("%w: expiresAt is in the past", ErrInvalid)
	}
	var updated *Assignment
	err := db.RetryOnConflict(ctx, func(int) error {
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		current.ExpiresAt = expiresAt
		updated, err = s.repo.UpdateVersioned(ctx, current)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "assignment.expiry", updated)
	return updated, nil
}

// ActiveRoleIDs lists distinct role IDs from assignments that are active and
// not expired as of now.
func (s *Service) ActiveRoleIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error) {
	all, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{}, len(all))
	var ids []int64
	for _, assignment := range all {
		if !assignment.Usable(now) {
			continue
		}
		if _, ok := seen[assignment.RoleID]; ok {
			continue
		}
		seen[assignment.RoleID] = struct{}{}
		ids = append(ids, assignment.RoleID)
	}
	return ids, nil
}
