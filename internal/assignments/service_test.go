package assignments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuscore/campuscore/internal/platform/db"
	_ "github.com/campuscore/campuscore/testing"
)

type mockRepository struct {
	nextID      int64
	assignments map[int64]Assignment

	// staleUpdates makes the next N UpdateVersioned calls fail with a stale
	// version, simulating a concurrent writer winning the race.
	staleUpdates int
	updateCalls  int
}

func newMockRepository() *mockRepository {
	return &mockRepository{nextID: 1, assignments: make(map[int64]Assignment)}
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &assignment, nil
}

func (m *mockRepository) ListForUser(_ context.Context, userID int64) ([]Assignment, error) {
	var out []Assignment
	for _, assignment := range m.assignments {
		if assignment.UserID == userID {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, assignment *Assignment) (*Assignment, error) {
	for _, existing := range m.assignments {
		if existing.UserID == assignment.UserID && existing.RoleID == assignment.RoleID {
			return nil, ErrDuplicate
		}
	}
	created := *assignment
	created.ID = m.nextID
	created.IsActive = true
	created.Version = 1
	m.nextID++
	m.assignments[created.ID] = created
	return &created, nil
}

func (m *mockRepository) UpdateVersioned(_ context.Context, assignment *Assignment) (*Assignment, error) {
	m.updateCalls++
	if m.staleUpdates > 0 {
		m.staleUpdates--
		return nil, db.ErrStaleVersion
	}
	current, ok := m.assignments[assignment.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if current.Version != assignment.Version {
		return nil, db.ErrStaleVersion
	}
	updated := *assignment
	updated.Version++
	m.assignments[updated.ID] = updated
	return &updated, nil
}

type staticRoles map[int64]bool

func (s staticRoles) RoleExists(_ context.Context, roleID int64) (bool, error) {
	return s[roleID], nil
}

func newTestService(repo *mockRepository) *Service {
	svc := NewService(repo, staticRoles{10: true, 20: true})
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestAssignAndResolve(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	assignment, err := svc.Assign(ctx, AssignInput{UserID: 1, RoleID: 10})
	require.NoError(t, err)
	require.True(t, assignment.IsActive)
	require.EqualValues(t, 1, assignment.Version)

	ids, err := svc.ActiveRoleIDs(ctx, 1, svc.now())
	require.NoError(t, err)
	require.Equal(t, []int64{10}, ids)
}

func TestAssignUnknownRole(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.Assign(context.Background(), AssignInput{UserID: 1, RoleID: 99})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestAssignDuplicate(t *testing.T) {
	svc := newTestService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Assign(ctx, AssignInput{UserID: 1, RoleID: 10})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, AssignInput{UserID: 1, RoleID: 10})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestAssignExpiryInPast(t *testing.T) {
	svc := newTestService(newMockRepository())
	past := svc.now().Add(-time.Hour)

	_, err := svc.Assign(context.Background(), AssignInput{UserID: 1, RoleID: 10, ExpiresAt: &past})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestRevokeKeepsRowAndStopsResolution(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	assignment, err := svc.Assign(ctx, AssignInput{UserID: 1, RoleID: 10})
	require.NoError(t, err)

	revoked, err := svc.Revoke(ctx, assignment.ID)
	require.NoError(t, err)
	require.False(t, revoked.IsActive)
	require.EqualValues(t, 2, revoked.Version)

	// The row survives for history.
	history, err := svc.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)

	// But the role no longer resolves.
	ids, err := svc.ActiveRoleIDs(ctx, 1, svc.now())
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestRevokeAlreadyRevoked(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	assignment, err := svc.Assign(ctx, AssignInput{UserID: 1, RoleID: 10})
	require.NoError(t, err)

	first, err := svc.Revoke(ctx, assignment.ID)
	require.NoError(t, err)

	second, err := svc.Revoke(ctx, assignment.ID)
	require.NoError(t, err)
	require.Equal(t, first.Version, second.Version)
}

func TestExpiredAssignmentExcluded(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	soon := svc.now().Add(time.Hour)
	_, err := svc.Assign(ctx, AssignInput{UserID: 1, RoleID: 10, ExpiresAt: &soon})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, AssignInput{UserID: 1, RoleID: 20})
	require.NoError(t, err)

	ids, err := svc.ActiveRoleIDs(ctx, 1, svc.now())
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{10, 20}, ids)

	// Two hours later the first assignment has lapsed.
	ids, err = svc.ActiveRoleIDs(ctx, 1, svc.now().Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, []int64{20}, ids)
}

func TestConflictingUpdateRetries(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	assignment, err := svc.Assign(ctx, AssignInput{UserID: 1, RoleID: 10})
	require.NoError(t, err)

	// Two lost races, then the reload-and-reapply succeeds.
	repo.staleUpdates = 2
	revoked, err := svc.Revoke(ctx, assignment.ID)
	require.NoError(t, err)
	require.False(t, revoked.IsActive)
	require.Equal(t, 3, repo.updateCalls)
}

func TestConflictingUpdateGivesUp(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	assignment, err := svc.Assign(ctx, AssignInput{UserID: 1, RoleID: 10})
	require.NoError(t, err)

	repo.staleUpdates = db.MaxConflictRetries + 1
	repo.updateCalls = 0
	_, err = svc.Revoke(ctx, assignment.ID)
	require.True(t, errors.Is(err, db.ErrStaleVersion))
	require.Equal(t, db.MaxConflictRetries, repo.updateCalls)
}

func TestUpdateExpiry(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	assignment, err := svc.Assign(ctx, AssignInput{UserID: 1, RoleID: 10})
	require.NoError(t, err)

	later := svc.now().Add(24 * time.Hour)
	updated, err := svc.UpdateExpiry(ctx, assignment.ID, &later)
	require.NoError(t, err)
	require.NotNil(t, updated.ExpiresAt)
	require.True(t, updated.ExpiresAt.Equal(later))

	cleared, err := svc.UpdateExpiry(ctx, assignment.ID, nil)
	require.NoError(t, err)
	require.Nil(t, cleared.ExpiresAt)
}
