// Package models defines server-side data models persisted in the database.
package models

import "time"

type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleCentra       Role = "Centra"
	RoleHarbourGuard Role = "Harbour Guard"
	RoleXYZ          Role = "XYZ"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCentra, RoleHarbourGuard, RoleXYZ:
		return true
	}
	return false
}

// User is an account. SecretKey holds the encrypted OTP secret, never the
// raw base32 value.
type User struct {
	ID             int64
	Email          string
	FullName       string
	Role           Role
	IDORole        string
	Phone          string
	HashedPassword string
	IsPasswordSet  bool
	SecretKey      string
	CreatedAt      time.Time
}
