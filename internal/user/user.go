// Package user keeps the account registry: requesters sign themselves up,
// collector accounts are provisioned at boot.
package user

import (
	"time"

	"github.com/google/uuid"
)

// Role gates which workflow operations an account may invoke.
type Role string

const (
	RoleRequester Role = "requester"
	RoleCollector Role = "collector"
)

// User is an account. PasswordHash is a bcrypt digest and never leaves the
// package boundary unredacted.
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Phone        string
	Address      string
	City         string
	BirthDate    *time.Time
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// FullName is the display/beneficiary name used on vouchers.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
