package assignments

import "time"

// Assignment links a user to a role. Revocation flips IsActive rather than
// deleting the row so the audit trail survives. Version is the optimistic
// concurrency token; every committed write increments it.
type Assignment struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userId"`
	RoleID     int64      `json:"roleId"`
	AssignedAt time.Time  `json:"assignedAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	IsActive   bool       `json:"isActive"`
	Version    int64      `json:"version"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Expired reports whether the assignment has an expiry in the past.
func (a Assignment) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}

// Usable reports whether the assignment should count during role resolution.
func (a Assignment) Usable(now time.Time) bool {
	return a.IsActive && !a.Expired(now)
}
