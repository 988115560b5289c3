package roles

import "time"

// Role represents a named permission grouping assignable to users. System
// roles are seeded with the application and cannot be deleted.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description"`
	Level       int       `json:"level"`
	IsActive    bool      `json:"isActive"`
	IsSystem    bool      `json:"isSystem"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
