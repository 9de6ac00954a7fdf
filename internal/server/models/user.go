// Package models holds the persistent shapes shared by the repositories and
// services.
package models

import (
	"time"

	"github.com/openreach/cms-server/internal/server/rbac"
)

// User is the account record consumed by the auth core. The core reads it and
// performs narrow field updates (login state, hash, flags); it never deletes.
type User struct {
	ID                 string
	Email              string
	Name               string
	PasswordHash       string
	Role               rbac.Role
	Active             bool
	FailedAttempts     int
	LockExpiry         *time.Time
	MustChangePassword bool
	LastLoginAt        *time.Time
	CreatedBy          *string
	CreatedAt          time.Time
}

// LoginState carries the fields updated after a login attempt. The lockout
// tracker computes it; the user repository persists it in one statement.
type LoginState struct {
	FailedAttempts int
	LockExpiry     *time.Time
	LastLoginAt    *time.Time
}
