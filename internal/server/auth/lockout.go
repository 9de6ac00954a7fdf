package auth

import (
	"time"

	"github.com/openreach/cms-server/internal/server/models"
)

// LockoutTracker computes failed-attempt counters and lock expiries for login
// attempts. It is pure logic: callers persist the returned state through the
// user repository.
type LockoutTracker struct {
	maxAttempts  int
	lockDuration time.Duration
}

func NewLockoutTracker(maxAttempts int, lockDuration time.Duration) *LockoutTracker {
	return &LockoutTracker{maxAttempts: maxAttempts, lockDuration: lockDuration}
}

// RecordFailure increments the user's failed-attempt counter and, once the
// configured maximum is reached, sets a lock expiry of now plus the lock
// duration. LastLoginAt is carried through unchanged.
func (t *LockoutTracker) RecordFailure(u *models.User, now time.Time) models.LoginState {
	state := models.LoginState{
		FailedAttempts: u.FailedAttempts + 1,
		LockExpiry:     u.LockExpiry,
		LastLoginAt:    u.LastLoginAt,
	}
	if state.FailedAttempts >= t.maxAttempts {
		expiry := now.Add(t.lockDuration)
		state.LockExpiry = &expiry
	}
	return state
}

// RecordSuccess resets the counter, clears any expired lock, and stamps the
// login time.
func (t *LockoutTracker) RecordSuccess(now time.Time) models.LoginState {
	return models.LoginState{
		FailedAttempts: 0,
		LockExpiry:     nil,
		LastLoginAt:    &now,
	}
}

// IsLocked reports whether the account is locked at the given instant: the
// lock expiry is set and strictly in the future. An elapsed expiry voids the
// lock implicitly; nothing clears it eagerly.
func (t *LockoutTracker) IsLocked(u *models.User, now time.Time) bool {
	return u.LockExpiry != nil && u.LockExpiry.After(now)
}
