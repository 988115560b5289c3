package attendance

import "time"

// Status values for a daily attendance record.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

// ValidStatus reports whether s is a known attendance status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Record sources.
const (
	SourceManual = "manual"
	SourceDevice = "device"
)

// Record is one student's attendance for one calendar day. The
// (StudentID, Date) pair is unique; re-marking the same day replaces the
// status rather than adding a row.
type Record struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"studentId"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	DeviceID  string    `json:"deviceId,omitempty"`
	Note      string    `json:"note,omitempty"`
	MarkedBy  int64     `json:"markedBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ClockEvent is an employee clock-in or clock-out captured by a device.
type ClockEvent struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeId"`
	DeviceID   string    `json:"deviceId"`
	Direction  string    `json:"direction"`
	ClockedAt  time.Time `json:"clockedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Clock directions.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// DateOnly strips the time-of-day so records key on the calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
