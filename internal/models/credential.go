// Package models contains the data structures shared by the credential,
// storage, and loader layers.
package models

import "time"

// Role is the closed set of credential roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Credential is a row of the credential store. PasswordHash and Salt are
// always read and written together; the plaintext password never appears
// here or in any log.
type Credential struct {
	Identity       string
	Email          string
	DisplayName    string
	PasswordHash   []byte
	Salt           []byte
	Role           Role
	FailedAttempts int
	LockedUntil    *time.Time
	LastLogin      *time.Time
}

// Locked reports whether the credential is locked at the given instant.
// Lockout expiry is lazy: no background timer clears LockedUntil.
func (c *Credential) Locked(now time.Time) bool {
	return c.LockedUntil != nil && now.Before(*c.LockedUntil)
}

// Public returns the caller-visible view of the credential, stripped of
// hash, salt, and lockout bookkeeping.
func (c *Credential) Public() *PublicCredential {
	return &PublicCredential{
		Identity:    c.Identity,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		Role:        c.Role,
	}
}

// PublicCredential is what Authenticate returns on success.
type PublicCredential struct {
	Identity    string
	Email       string
	DisplayName string
	Role        Role
}
