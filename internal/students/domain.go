package students

import (
	"time"

	"golang.org/x/text/cases"
)

// Status values for a student record.
const (
	StatusActive      = "active"
	StatusSuspended   = "suspended"
	StatusGraduated   = "graduated"
	StatusTransferred = "transferred"
)

// ValidStatus reports whether s is a known student status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusSuspended, StatusGraduated, StatusTransferred:
		return true
	}
	return false
}

// Student is a pupil record. AdmissionNo and Email are unique.
type Student struct {
	ID            int64     `json:"id"`
	AdmissionNo   string    `json:"admissionNo"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email,omitempty"`
	ClassLabel    string    `json:"classLabel"`
	StreamLabel   string    `json:"streamLabel,omitempty"`
	GuardianName  string    `json:"guardianName,omitempty"`
	GuardianPhone string    `json:"guardianPhone,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FullName joins the name parts for display and search.
func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

var folder = cases.Fold()

// FoldName case-folds a name for accent- and case-insensitive matching.
// Folding handles scripts where ToLower alone is not enough.
func FoldName(name string) string {
	return folder.String(name)
}
