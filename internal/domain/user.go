package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// UserRole enumerates back-office roles.
type UserRole string

const (
	RoleDriver     UserRole = "DRIVER"
	RoleDispatcher UserRole = "DISPATCHER"
	RoleManager    UserRole = "MANAGER"
	RoleAdmin      UserRole = "ADMIN"
)

// User is the domain model for back-office accounts. IDs are numeric and
// are the subject identifiers carried inside credential tokens.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
