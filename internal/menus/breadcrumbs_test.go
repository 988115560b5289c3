package menus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breadcrumbFixture(t *testing.T) *Service {
	t.Helper()
	service := NewService(newMockRepository())
	ctx := context.Background()

	root, err := service.Create(ctx, CreateNodeInput{
		Name: "Academics", DisplayName: "Academics", Route: "/academics", Type: TypeModule,
	})
	require.NoError(t, err)
	attendance, err := service.Create(ctx, CreateNodeInput{
		Name: "AttendanceManagement", DisplayName: "Attendance", Route: "/academics/attendance",
		Type: TypeMenu, ParentID: &root.ID,
	})
	require.NoError(t, err)
	_, err = service.Create(ctx, CreateNodeInput{
		Name: "AttendanceDaily", DisplayName: "Daily Register", Route: "/academics/attendance/daily",
		Type: TypeSubmenu, ParentID: &attendance.ID,
	})
	require.NoError(t, err)
	return service
}

func TestBreadcrumbsFollowRoutePrefixes(t *testing.T) {
	service := breadcrumbFixture(t)

	crumbs, err := service.Breadcrumbs(context.Background(), "/academics/attendance/daily")
	require.NoError(t, err)
	require.Len(t, crumbs, 3)
	assert.Equal(t, "Academics", crumbs[0].Name)
	assert.Equal(t, "AttendanceManagement", crumbs[1].Name)
	assert.Equal(t, "AttendanceDaily", crumbs[2].Name)
}

func TestBreadcrumbsSkipUnmatchedSegments(t *testing.T) {
	service := breadcrumbFixture(t)

	// "42" has no route of its own; the walk continues past it.
	crumbs, err := service.Breadcrumbs(context.Background(), "/academics/attendance/42")
	require.NoError(t, err)
	require.Len(t, crumbs, 2)
	assert.Equal(t, "AttendanceManagement", crumbs[1].Name)
}

func TestBreadcrumbsEmptyPath(t *testing.T) {
	service := breadcrumbFixture(t)

	crumbs, err := service.Breadcrumbs(context.Background(), "/")
	require.NoError(t, err)
	assert.Empty(t, crumbs)
}
