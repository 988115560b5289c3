package employees

import "time"

// Status values for an employee record.
const (
	StatusActive   = "active"
	StatusOnLeave  = "on_leave"
	StatusResigned = "resigned"
	StatusRetired  = "retired"
)

// ValidStatus reports whether s is a known employee status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusOnLeave, StatusResigned, StatusRetired:
		return true
	}
	return false
}

// Employee is a staff record. StaffNo is unique.
type Employee struct {
	ID          int64     `json:"id"`
	StaffNo     string    `json:"staffNo"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Designation string    `json:"designation"`
	Department  string    `json:"department"`
	SalaryGrade string    `json:"salaryGrade,omitempty"`
	Status      string    `json:"status"`
	HiredAt     time.Time `json:"hiredAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FullName joins the name parts for display.
func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
