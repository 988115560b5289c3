package audit

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuscore/campuscore/internal/shared"
	_ "github.com/campuscore/campuscore/testing"
)

type mockRepository struct {
	entries []Entry
}

func (m *mockRepository) Insert(_ context.Context, entry *Entry) error {
	stored := *entry
	stored.ID = int64(len(m.entries) + 1)
	// Prepend: the real queries order newest first.
	m.entries = append([]Entry{stored}, m.entries...)
	return nil
}

func (m *mockRepository) Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	all, err := m.All(ctx, filters)
	if err != nil {
		return nil, err
	}
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockRepository) All(_ context.Context, filters TimelineFilters) ([]Entry, error) {
	var out []Entry
	for _, entry := range m.entries {
		if filters.Actor != "" && entry.Actor != filters.Actor {
			continue
		}
		if filters.Entity != "" && entry.Entity != filters.Entity {
			continue
		}
		if filters.Action != "" && entry.Action != filters.Action {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func newTestService(repo *mockRepository) *Service {
	svc := NewService(repo, slog.Default())
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	return svc
}

func admin() *shared.Identity {
	return &shared.Identity{UserID: 1, Email: "admin@example.com"}
}

func TestRecordAndTimeline(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)
	ctx := context.Background()

	svc.Record(ctx, admin(), "role.create", "role", "10", "created Teacher")
	svc.Record(ctx, admin(), "grant.replace", "role", "10", "")

	result, err := svc.Timeline(ctx, TimelineFilters{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	require.Equal(t, "grant.replace", result.Rows[0].Action)
	require.Equal(t, "admin@example.com", result.Rows[0].Actor)
	require.False(t, result.Paging.HasNext)
}

func TestTimelinePaging(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		svc.Record(ctx, admin(), "menu.update", "menu", EntityID(int64(i)), "")
	}

	first, err := svc.Timeline(ctx, TimelineFilters{})
	require.NoError(t, err)
	require.Len(t, first.Rows, 20)
	require.True(t, first.Paging.HasNext)

	second, err := svc.Timeline(ctx, TimelineFilters{Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Rows, 5)
	require.False(t, second.Paging.HasNext)
}

func TestTimelineFilterByAction(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)
	ctx := context.Background()

	svc.Record(ctx, admin(), "role.create", "role", "1", "")
	svc.Record(ctx, admin(), "role.delete", "role", "2", "")

	result, err := svc.Timeline(ctx, TimelineFilters{Action: "role.delete"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Equal(t, "2", result.Rows[0].EntityID)
}

func TestExportCSV(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)
	ctx := context.Background()

	svc.Record(ctx, admin(), "assignment.revoke", "assignment", "3", "teacher left")

	data, err := svc.ExportCSV(ctx, TimelineFilters{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "at,actor,action,entity,entity_id,detail", lines[0])
	require.Contains(t, lines[1], "assignment.revoke")
	require.Contains(t, lines[1], "teacher left")
}
