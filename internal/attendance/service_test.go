package attendance

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuscore/campuscore/internal/shared"
	_ "github.com/campuscore/campuscore/testing"
)

type recordKey struct {
	studentID int64
	date      time.Time
}

type mockRepository struct {
	nextID  int64
	records map[recordKey]Record
	clocks  []ClockEvent

	// failStudentID makes Upsert fail for one student, for isolation tests.
	failStudentID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{nextID: 1, records: make(map[recordKey]Record)}
}

func (m *mockRepository) Upsert(_ context.Context, record *Record) (*Record, error) {
	if m.failStudentID != 0 && record.StudentID == m.failStudentID {
		return nil, ErrNotFound
	}
	key := recordKey{record.StudentID, DateOnly(record.Date)}
	stored, ok := m.records[key]
	if !ok {
		stored = Record{ID: m.nextID, StudentID: record.StudentID, Date: key.date}
		m.nextID++
	}
	stored.Status = record.Status
	stored.Source = record.Source
	stored.DeviceID = record.DeviceID
	stored.Note = record.Note
	stored.MarkedBy = record.MarkedBy
	m.records[key] = stored
	return &stored, nil
}

func (m *mockRepository) Get(_ context.Context, studentID int64, date time.Time) (*Record, error) {
	record, ok := m.records[recordKey{studentID, DateOnly(date)}]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (m *mockRepository) ListByDate(_ context.Context, date time.Time) ([]Record, error) {
	return m.list(func(r Record) bool { return r.Date.Equal(DateOnly(date)) })
}

func (m *mockRepository) ListRange(_ context.Context, from, to time.Time) ([]Record, error) {
	fromDay, toDay := DateOnly(from), DateOnly(to)
	return m.list(func(r Record) bool {
		return !r.Date.Before(fromDay) && !r.Date.After(toDay)
	})
}

func (m *mockRepository) list(match func(Record) bool) ([]Record, error) {
	var out []Record
	for _, record := range m.records {
		if match(record) {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out, nil
}

func (m *mockRepository) InsertClockEvent(_ context.Context, event *ClockEvent) (*ClockEvent, error) {
	stored := *event
	stored.ID = m.nextID
	m.nextID++
	m.clocks = append(m.clocks, stored)
	return &stored, nil
}

func (m *mockRepository) ListClockEvents(_ context.Context, employeeID int64, from, to time.Time) ([]ClockEvent, error) {
	var out []ClockEvent
	for _, event := range m.clocks {
		if event.EmployeeID == employeeID && !event.ClockedAt.Before(from) && !event.ClockedAt.After(to) {
			out = append(out, event)
		}
	}
	return out, nil
}

var testDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepository) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return testDay.Add(9 * time.Hour) }
	return svc
}

func TestMarkAndRemarkSameDay(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	teacher := &shared.Identity{UserID: 7}

	first, err := svc.Mark(ctx, teacher, MarkInput{StudentID: 1, Date: testDay, Status: StatusAbsent})
	require.NoError(t, err)
	require.Equal(t, StatusAbsent, first.Status)
	require.EqualValues(t, 7, first.MarkedBy)

	// The student shows up after all; the same row is updated.
	second, err := svc.Mark(ctx, teacher, MarkInput{StudentID: 1, Date: testDay, Status: StatusLate, Note: "arrived 9:40"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, StatusLate, second.Status)

	records, err := svc.ListByDate(ctx, testDay)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestMarkUnknownStatus(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.Mark(context.Background(), nil, MarkInput{StudentID: 1, Date: testDay, Status: "sleeping"})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestListRangeRejectsInvertedRange(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.ListRange(context.Background(), testDay, testDay.AddDate(0, 0, -1))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestWriteCSV(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Mark(ctx, nil, MarkInput{StudentID: 2, Date: testDay, Status: StatusPresent})
	require.NoError(t, err)
	_, err = svc.Mark(ctx, nil, MarkInput{StudentID: 1, Date: testDay, Status: StatusExcused, Note: "clinic"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(ctx, &buf, testDay, testDay))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "date,student_id,status,source,device_id,note", lines[0])
	require.Contains(t, lines[1], "2026-03-02,1,excused")
	require.Contains(t, lines[2], "2026-03-02,2,present")
}

func TestSummaryCounts(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	for studentID, status := range map[int64]string{1: StatusPresent, 2: StatusPresent, 3: StatusAbsent} {
		_, err := svc.Mark(ctx, nil, MarkInput{StudentID: studentID, Date: testDay, Status: status})
		require.NoError(t, err)
	}

	summary, err := svc.Summary(ctx, testDay, testDay)
	require.NoError(t, err)
	require.Equal(t, map[string]int{StatusPresent: 2, StatusAbsent: 1}, summary)
}

func TestRecordClockValidatesDirection(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.RecordClock(context.Background(), 5, "GATE-1", "sideways", time.Time{})
	require.ErrorIs(t, err, ErrInvalid)

	event, err := svc.RecordClock(context.Background(), 5, "GATE-1", DirectionIn, time.Time{})
	require.NoError(t, err)
	require.Equal(t, svc.now(), event.ClockedAt)
}
