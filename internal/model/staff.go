package model

import "time"

// Staff roles.  STAFF can operate the check-in and consumable
// ledgers; ADMIN can additionally edit notes and transportation.
const (
	RoleStaff = "STAFF"
	RoleAdmin = "ADMIN"
)

// StaffUser mirrors the 'staff_users' table.  Venue staff authenticate
// with email and password before any ledger mutation is allowed.
type StaffUser struct {
	ID           uint64    // staff_users.id
	Email        string    // staff_users.email
	PasswordHash string    // staff_users.password_hash
	Role         string    // staff_users.role
	IsActive     bool      // staff_users.is_active
	CreatedAt    time.Time // staff_users.created_at
	UpdatedAt    time.Time // staff_users.updated_at
}
