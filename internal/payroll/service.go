package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campuscore/campuscore/internal/employees"
	"github.com/campuscore/campuscore/internal/notifications"
)

// ErrInvalid marks input validation failures.
var ErrInvalid = errors.New("payroll: invalid input")

// EmployeeSource lists the staff a run pays.
type EmployeeSource interface {
	ListActive(ctx context.Context) ([]employees.Employee, error)
}

// Notifier queues payslip notifications.
type Notifier interface {
	Enqueue(ctx context.Context, input notifications.EnqueueInput) (*notifications.Notification, error)
}

// Service handles salary structures and payroll runs.
type Service struct {
	repo     RepositoryPort
	staff    EmployeeSource
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds Service instance. notifier may be nil; runs then skip
// payslip notifications.
func NewService(repo RepositoryPort, staff EmployeeSource, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, staff: staff, notifier: notifier, logger: logger}
}

// SetStructureInput carries a salary structure write.
type SetStructureInput struct {
	EmployeeID int64
	Base       int64
	Allowances []Component
}

// SetStructure writes an employee's salary structure.
func (s *Service) SetStructure(ctx context.Context, input SetStructureInput) (*SalaryStructure, error) {
	if input.EmployeeID <= 0 {
		return nil, fmt.Errorf("%w: employeeId is required", ErrInvalid)
	}
	if input.Base <= 0 {
		return nil, fmt.Errorf("%w: base must be positive", ErrInvalid)
	}
	for _, allowance := range input.Allowances {
		if allowance.Name == "" {
			return nil, fmt.Errorf("%w: allowance name is required", ErrInvalid)
		}
		if allowance.Amount < 0 {
			return nil, fmt.Errorf("%w: allowance %q is negative", ErrInvalid, allowance.Name)
		}
	}
	return s.repo.UpsertStructure(ctx, &SalaryStructure{
		EmployeeID: input.EmployeeID,
		Base:       input.Base,
		Allowances: input.Allowances,
	})
}

// GetStructure returns an employee's salary structure.
func (s *Service) GetStructure(ctx context.Context, employeeID int64) (*SalaryStructure, error) {
	return s.repo.GetStructure(ctx, employeeID)
}

// GetRun returns a run with its payslips.
func (s *Service) GetRun(ctx context.Context, id int64) (*Run, error) {
	return s.repo.GetRun(ctx, id)
}

// ListRuns returns all runs.
func (s *Service) ListRuns(ctx context.Context) ([]Run, error) {
	return s.repo.ListRuns(ctx)
}

// CalculateRun pays every active employee with a salary structure for one
// period. Gross is base plus allowances; net applies the flat statutory
// deduction stub. Staff without a structure are logged and skipped. Each
// payslip queues an email notification when the employee has an address.
func (s *Service) CalculateRun(ctx context.Context, period string) (*Run, error) {
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("%w: period must be YYYY-MM", ErrInvalid)
	}
	staff, err := s.staff.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	run := &Run{Period: period, Status: RunStatusCompleted}
	byEmployee := make(map[int64]employees.Employee, len(staff))
	for _, employee := range staff {
		structure, err := s.repo.GetStructure(ctx, employee.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Warn("no salary structure, skipping",
					slog.String("staffNo", employee.StaffNo))
				continue
			}
			return nil, err
		}
		gross := structure.Gross()
		deductions := deductionFor(gross)
		run.Payslips = append(run.Payslips, Payslip{
			EmployeeID: employee.ID,
			Gross:      gross,
			Deductions: deductions,
			Net:        gross - deductions,
		})
		byEmployee[employee.ID] = employee
	}
	stored, err := s.repo.CreateRun(ctx, run)
	if err != nil {
		return nil, err
	}
	s.notifyPayslips(ctx, stored, byEmployee)
	return stored, nil
}

func (s *Service) notifyPayslips(ctx context.Context, run *Run, byEmployee map[int64]employees.Employee) {
	if s.notifier == nil {
		return
	}
	for _, slip := range run.Payslips {
		employee, ok := byEmployee[slip.EmployeeID]
		if !ok || employee.Email == "" {
			continue
		}
		_, err := s.notifier.Enqueue(ctx, notifications.EnqueueInput{
			Channel:   notifications.ChannelEmail,
			Recipient: employee.Email,
			Subject:   "Payslip for " + run.Period,
			Body: fmt.Sprintf("Dear %s, your payslip for %s is ready. Net pay: %s.",
				employee.FullName(), run.Period, FormatAmount(slip.Net)),
		})
		if err != nil {
			s.logger.Warn("queue payslip notification",
				slog.String("staffNo", employee.StaffNo), slog.Any("error", err))
		}
	}
}
