package attendance

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/campuscore/campuscore/internal/shared"
)

// ErrInvalid marks input validation failures.
var ErrInvalid = errors.New("attendance: invalid input")

// Service handles attendance workflows.
type Service struct {
	repo RepositoryPort

	now func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// MarkInput carries a manual attendance marking.
type MarkInput struct {
	StudentID int64
	Date      time.Time
	Status    string
	Note      string
}

// Mark records a student's attendance for a day. Marking the same student
// and day again updates the existing record.
func (s *Service) Mark(ctx context.Context, identity *shared.Identity, input MarkInput) (*Record, error) {
	if input.StudentID <= 0 {
		return nil, fmt.Errorf("%w: studentId is required", ErrInvalid)
	}
	if !ValidStatus(input.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, input.Status)
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	record := &Record{
		StudentID: input.StudentID,
		Date:      date,
		Status:    input.Status,
		Source:    SourceManual,
		Note:      input.Note,
	}
	if identity != nil {
		record.MarkedBy = identity.UserID
	}
	return s.repo.Upsert(ctx, record)
}

// Get returns one student's record for a day.
func (s *Service) Get(ctx context.Context, studentID int64, date time.Time) (*Record, error) {
	return s.repo.Get(ctx, studentID, date)
}

// ListByDate returns all records for a day.
func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]Record, error) {
	return s.repo.ListByDate(ctx, date)
}

// ListRange returns records between from and to inclusive.
func (s *Service) ListRange(ctx context.Context, from, to time.Time) ([]Record, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before start", ErrInvalid)
	}
	return s.repo.ListRange(ctx, from, to)
}

// RecordClock appends an employee clock event.
func (s *Service) RecordClock(ctx context.Context, employeeID int64, deviceID, direction string, at time.Time) (*ClockEvent, error) {
	if employeeID <= 0 {
		return nil, fmt.Errorf("%w: employeeId is required", ErrInvalid)
	}
	if direction != DirectionIn && direction != DirectionOut {
		return nil, fmt.Errorf("%w: unknown clock direction %q", ErrInvalid, direction)
	}
	if at.IsZero() {
		at = s.now()
	}
	return s.repo.InsertClockEvent(ctx, &ClockEvent{
		EmployeeID: employeeID,
		DeviceID:   deviceID,
		Direction:  direction,
		ClockedAt:  at,
	})
}

// ListClockEvents returns an employee's clock events in a window.
func (s *Service) ListClockEvents(ctx context.Context, employeeID int64, from, to time.Time) ([]ClockEvent, error) {
	return s.repo.ListClockEvents(ctx, employeeID, from, to)
}

// WriteCSV streams a date range of records as CSV.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, from, to time.Time) error {
	records, err := s.ListRange(ctx, from, to)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "student_id", "status", "source", "device_id", "note"}); err != nil {
		return err
	}
	for _, record := range records {
		row := []string{
			record.Date.Format(time.DateOnly),
			strconv.FormatInt(record.StudentID, 10),
			record.Status,
			record.Source,
			record.DeviceID,
			record.Note,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary counts records by status over a range.
func (s *Service) Summary(ctx context.Context, from, to time.Time) (map[string]int, error) {
	records, err := s.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary := map[string]int{}
	for _, record := range records {
		summary[record.Status]++
	}
	return summary, nil
}
