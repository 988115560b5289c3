package rbac

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/campuscore/campuscore/testing"
)

type mockGrants struct {
	grants map[[2]int64]Grant
}

func newMockGrants() *mockGrants {
	return &mockGrants{grants: make(map[[2]int64]Grant)}
}

func (m *mockGrants) GetGrant(ctx context.Context, roleID, menuID int64) (*Grant, error) {
	grant, ok := m.grants[[2]int64{roleID, menuID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &grant, nil
}

func (m *mockGrants) ListGrants(ctx context.Context, roleID int64) ([]Grant, error) {
	var out []Grant
	for key, grant := range m.grants {
		if key[0] == roleID {
			out = append(out, grant)
		}
	}
	return out, nil
}

func (m *mockGrants) ReplaceGrants(ctx context.Context, roleID int64, grants []Grant) error {
	for _, grant := range grants {
		grant.RoleID = roleID
		m.grants[[2]int64{roleID, grant.MenuID}] = grant
	}
	return nil
}

func (m *mockGrants) DeleteGrant(ctx context.Context, roleID, menuID int64) error {
	key := [2]int64{roleID, menuID}
	if _, ok := m.grants[key]; !ok {
		return ErrNotFound
	}
	delete(m.grants, key)
	return nil
}

type staticRoles map[int64][]int64

func (s staticRoles) ActiveRoleIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error) {
	return s[userID], nil
}

func TestResolveFailsClosedWithoutGrant(t *testing.T) {
	service := NewService(newMockGrants(), staticRoles{})

	set, err := service.Resolve(context.Background(), 1, 99)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

func TestAssignThenResolveRoundTrips(t *testing.T) {
	service := NewService(newMockGrants(), staticRoles{})
	want := PermissionSet{View: true, Export: true, Approve: true}

	err := service.AssignGrants(context.Background(), 3, []Grant{{MenuID: 10, Permissions: want}})
	require.NoError(t, err)

	got, err := service.Resolve(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUnknownCapabilityIsDenied(t *testing.T) {
	assert.False(t, FullAccess.Has("administer"))
	assert.False(t, FullAccess.Has(""))
	assert.True(t, FullAccess.Has("VIEW"))
	assert.True(t, FullAccess.Has(" approve "))
}

func TestEffectiveSetUnionsRoles(t *testing.T) {
	grants := newMockGrants()
	service := NewService(grants, staticRoles{7: {1, 2}})

	require.NoError(t, service.AssignGrants(context.Background(), 1, []Grant{{MenuID: 5, Permissions: PermissionSet{View: true}}}))
	require.NoError(t, service.AssignGrants(context.Background(), 2, []Grant{{MenuID: 5, Permissions: PermissionSet{Add: true}}}))

	effective, err := service.EffectiveSet(context.Background(), 7, 5)
	require.NoError(t, err)
	assert.True(t, effective.View)
	assert.True(t, effective.Add)
	assert.False(t, effective.Delete)
}

func TestEffectiveSetWithoutRolesIsEmpty(t *testing.T) {
	service := NewService(newMockGrants(), staticRoles{})

	effective, err := service.EffectiveSet(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.True(t, effective.IsEmpty())
}

func TestReplaceGrantsOverwritesWholesale(t *testing.T) {
	service := NewService(newMockGrants(), staticRoles{})
	ctx := context.Background()

	require.NoError(t, service.AssignGrants(ctx, 1, []Grant{{MenuID: 5, Permissions: FullAccess}}))
	require.NoError(t, service.AssignGrants(ctx, 1, []Grant{{MenuID: 5, Permissions: ViewOnly}}))

	got, err := service.Resolve(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, ViewOnly, got)
}
