package payroll

import (
	"fmt"
	"time"
)

// Component is one named amount in a salary structure. Amounts are in cents
// to keep the arithmetic exact.
type Component struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// SalaryStructure is an employee's pay composition: one base amount plus
// zero or more allowance components.
type SalaryStructure struct {
	ID         int64       `json:"id"`
	EmployeeID int64       `json:"employeeId"`
	Base       int64       `json:"base"`
	Allowances []Component `json:"allowances,omitempty"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Gross is the base plus all allowances.
func (s SalaryStructure) Gross() int64 {
	total := s.Base
	for _, allowance := range s.Allowances {
		total += allowance.Amount
	}
	return total
}

// Run statuses.
const (
	RunStatusCompleted = "completed"
)

// Run is one executed payroll calculation for a period.
type Run struct {
	ID        int64     `json:"id"`
	Period    string    `json:"period"`
	Status    string    `json:"status"`
	Payslips  []Payslip `json:"payslips,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Payslip is one employee's line in a run. Deductions are a flat statutory
// percentage stub; a real tax engine would replace deductionFor.
type Payslip struct {
	ID         int64  `json:"id"`
	RunID      int64  `json:"runId"`
	EmployeeID int64  `json:"employeeId"`
	Gross      int64  `json:"gross"`
	Deductions int64  `json:"deductions"`
	Net        int64  `json:"net"`
}

// deductionRatePercent is the stubbed statutory deduction.
const deductionRatePercent = 5

func deductionFor(gross int64) int64 {
	return gross * deductionRatePercent / 100
}

// ValidPeriod reports whether period is a YYYY-MM month label.
func ValidPeriod(period string) bool {
	_, err := time.Parse("2006-01", period)
	return err == nil
}

// FormatAmount renders cents as a decimal string for payslip documents.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
