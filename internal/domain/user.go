package domain

import (
	"errors"
	"time"
)

// User represents a staff member who can sign in.
type User struct {
	ID             string
	Email          string
	Name           string
	Role           Role
	PasswordHash   string
	Active         bool
	FailedAttempts int
	LockedUntil    *time.Time
	TOTPSecret     string
	TOTPEnabled    bool
	LastLoginAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin manages users and everything else
	RoleAdmin Role = "admin"

	// RoleManager handles invoicing, expenses and stock corrections
	RoleManager Role = "manager"

	// RoleMechanic works jobs and moves stock
	RoleMechanic Role = "mechanic"

	// RoleViewer can only read
	RoleViewer Role = "viewer"
)

var roleRank = map[Role]int{
	RoleViewer:   1,
	RoleMechanic: 2,
	RoleManager:  3,
	RoleAdmin:    4,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r.IsValid() && roleRank[r] >= roleRank[min]
}

// IsLocked reports whether sign in is blocked at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// RegisterFailure counts a failed attempt and locks the user once maxAttempts is reached.
// It reports whether this failure caused a lock.
func (u *User) RegisterFailure(now time.Time, maxAttempts int, lockout time.Duration) bool {
	u.FailedAttempts++
	u.UpdatedAt = now
	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		until := now.Add(lockout)
		u.LockedUntil = &until
		u.FailedAttempts = 0
		return true
	}
	return false
}

// RegisterSuccess clears the failure counter.
func (u *User) RegisterSuccess(now time.Time) {
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidTOTP        = errors.New("invalid one-time code")
	ErrTOTPNotEnrolled    = errors.New("two-factor authentication is not enrolled")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInsufficientRole   = errors.New("insufficient role for this operation")
)
