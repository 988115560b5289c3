package payroll

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuscore/campuscore/internal/employees"
	"github.com/campuscore/campuscore/internal/notifications"
	_ "github.com/campuscore/campuscore/testing"
)

type mockRepository struct {
	nextID     int64
	structures map[int64]SalaryStructure
	runs       map[int64]Run
}

func newMockRepository() *mockRepository {
	return &mockRepository{nextID: 1, structures: make(map[int64]SalaryStructure), runs: make(map[int64]Run)}
}

func (m *mockRepository) GetStructure(_ context.Context, employeeID int64) (*SalaryStructure, error) {
	structure, ok := m.structures[employeeID]
	if !ok {
		return nil, ErrNotFound
	}
	return &structure, nil
}

func (m *mockRepository) UpsertStructure(_ context.Context, structure *SalaryStructure) (*SalaryStructure, error) {
	stored := *structure
	if existing, ok := m.structures[structure.EmployeeID]; ok {
		stored.ID = existing.ID
	} else {
		stored.ID = m.nextID
		m.nextID++
	}
	stored.UpdatedAt = time.Now()
	m.structures[structure.EmployeeID] = stored
	return &stored, nil
}

func (m *mockRepository) CreateRun(_ context.Context, run *Run) (*Run, error) {
	for _, existing := range m.runs {
		if existing.Period == run.Period {
			return nil, ErrDuplicateRun
		}
	}
	stored := *run
	stored.ID = m.nextID
	m.nextID++
	for i := range stored.Payslips {
		stored.Payslips[i].ID = m.nextID
		stored.Payslips[i].RunID = stored.ID
		m.nextID++
	}
	m.runs[stored.ID] = stored
	return &stored, nil
}

func (m *mockRepository) GetRun(_ context.Context, id int64) (*Run, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &run, nil
}

func (m *mockRepository) ListRuns(_ context.Context) ([]Run, error) {
	var out []Run
	for _, run := range m.runs {
		out = append(out, run)
	}
	return out, nil
}

type staticStaff []employees.Employee

func (s staticStaff) ListActive(context.Context) ([]employees.Employee, error) {
	return s, nil
}

type captureNotifier struct {
	queued []notifications.EnqueueInput
}

func (c *captureNotifier) Enqueue(_ context.Context, input notifications.EnqueueInput) (*notifications.Notification, error) {
	c.queued = append(c.queued, input)
	return &notifications.Notification{ID: int64(len(c.queued))}, nil
}

func TestSetStructureValidation(t *testing.T) {
	svc := NewService(newMockRepository(), staticStaff{}, nil, slog.Default())
	ctx := context.Background()

	_, err := svc.SetStructure(ctx, SetStructureInput{EmployeeID: 1, Base: 0})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = svc.SetStructure(ctx, SetStructureInput{
		EmployeeID: 1,
		Base:       100_000,
		Allowances: []Component{{Name: "", Amount: 50}},
	})
	require.ErrorIs(t, err, ErrInvalid)

	structure, err := svc.SetStructure(ctx, SetStructureInput{
		EmployeeID: 1,
		Base:       100_000,
		Allowances: []Component{{Name: "housing", Amount: 20_000}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 120_000, structure.Gross())
}

func TestCalculateRunArithmetic(t *testing.T) {
	repo := newMockRepository()
	staff := staticStaff{
		{ID: 1, StaffNo: "EMP-001", FirstName: "Grace", Email: "grace@example.com"},
		{ID: 2, StaffNo: "EMP-002", FirstName: "John", Email: "john@example.com"},
	}
	notifier := &captureNotifier{}
	svc := NewService(repo, staff, notifier, slog.Default())
	ctx := context.Background()

	_, err := svc.SetStructure(ctx, SetStructureInput{EmployeeID: 1, Base: 200_000, Allowances: []Component{{Name: "transport", Amount: 40_000}}})
	require.NoError(t, err)
	_, err = svc.SetStructure(ctx, SetStructureInput{EmployeeID: 2, Base: 100_000})
	require.NoError(t, err)

	run, err := svc.CalculateRun(ctx, "2026-03")
	require.NoError(t, err)
	require.Len(t, run.Payslips, 2)

	// 240_000 gross, 5% deduction.
	require.EqualValues(t, 240_000, run.Payslips[0].Gross)
	require.EqualValues(t, 12_000, run.Payslips[0].Deductions)
	require.EqualValues(t, 228_000, run.Payslips[0].Net)
	require.EqualValues(t, 95_000, run.Payslips[1].Net)

	// Every payslip queued an email.
	require.Len(t, notifier.queued, 2)
	require.Equal(t, notifications.ChannelEmail, notifier.queued[0].Channel)
	require.Contains(t, notifier.queued[0].Body, "2280.00")
}

func TestCalculateRunSkipsStaffWithoutStructure(t *testing.T) {
	repo := newMockRepository()
	staff := staticStaff{
		{ID: 1, StaffNo: "EMP-001", FirstName: "Grace"},
		{ID: 2, StaffNo: "EMP-002", FirstName: "John"},
	}
	svc := NewService(repo, staff, nil, slog.Default())
	ctx := context.Background()

	_, err := svc.SetStructure(ctx, SetStructureInput{EmployeeID: 1, Base: 100_000})
	require.NoError(t, err)

	run, err := svc.CalculateRun(ctx, "2026-03")
	require.NoError(t, err)
	require.Len(t, run.Payslips, 1)
	require.EqualValues(t, 1, run.Payslips[0].EmployeeID)
}

func TestCalculateRunRejectsBadPeriodAndDuplicate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, staticStaff{}, nil, slog.Default())
	ctx := context.Background()

	_, err := svc.CalculateRun(ctx, "March 2026")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = svc.CalculateRun(ctx, "2026-03")
	require.NoError(t, err)

	_, err = svc.CalculateRun(ctx, "2026-03")
	require.ErrorIs(t, err, ErrDuplicateRun)
}
