// Package services contains the server-side business logic. This file
// implements AuthService: the single-attempt credential verification state
// machine, token issuance on success, and authenticated password changes.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/openreach/cms-server/internal/common"
	"github.com/openreach/cms-server/internal/dbx"
	"github.com/openreach/cms-server/internal/logging"
	"github.com/openreach/cms-server/internal/server/auth"
	"github.com/openreach/cms-server/internal/server/models"
	"github.com/openreach/cms-server/internal/server/repositories"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail lower-cases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LoginResult is returned on successful credential verification.
type LoginResult struct {
	User               *models.User
	AccessToken        string
	MustChangePassword bool
}

// AuthService verifies credentials and issues access tokens. All failure
// paths collapse to the error taxonomy in internal/common; only store
// failures propagate as ErrStoreUnavailable.
type AuthService struct {
	db      *sql.DB
	repos   repositories.Manager
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenService
	lockout *auth.LockoutTracker
	logger  logging.Logger

	// now is a test seam for the clock.
	now func() time.Time
}

func NewAuthService(db *sql.DB, m repositories.Manager, hasher *auth.PasswordHasher,
	tokens *auth.TokenService, lockout *auth.LockoutTracker, logger logging.Logger) *AuthService {
	return &AuthService{
		db:      db,
		repos:   m,
		hasher:  hasher,
		tokens:  tokens,
		lockout: lockout,
		logger:  logger.With("module", "auth_service"),
		now:     time.Now,
	}
}

// Login runs one credential-verification attempt:
//
//  1. reject malformed email syntax before any store access
//  2. look up the account by normalized email; absence is reported as the
//     same generic invalid-credential outcome as a wrong password
//  3. short-circuit locked accounts without touching the failure counter
//  4. compare the password hash; persist the updated login state either way
//
// Counter and lock expiry are written in a single statement, so no partial
// state survives a failure mid-attempt.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	normalized := NormalizeEmail(email)
	if !emailRe.MatchString(normalized) || password == "" {
		return nil, fmt.Errorf("%w: malformed email", common.ErrValidation)
	}

	repo := s.repos.Users(s.db)

	user, err := repo.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredential
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	now := s.now()
	if s.lockout.IsLocked(user, now) {
		return nil, common.ErrAccountLocked
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		state := s.lockout.RecordFailure(user, now)
		if err := repo.UpdateLoginState(ctx, user.ID, state); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
		}
		if state.LockExpiry != nil && user.LockExpiry == nil {
			s.logger.Warn(ctx, "account locked after repeated failures", "user_id", user.ID)
		}
		return nil, common.ErrInvalidCredential
	}

	// A correct password on a deactivated account is still reported as the
	// generic failure, so account status cannot be probed.
	if !user.Active {
		return nil, common.ErrInvalidCredential
	}

	state := s.lockout.RecordSuccess(now)
	if err := repo.UpdateLoginState(ctx, user.ID, state); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	user.FailedAttempts = state.FailedAttempts
	user.LockExpiry = state.LockExpiry
	user.LastLoginAt = state.LastLoginAt

	token, err := s.tokens.IssueAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: token signing: %v", common.ErrInternal, err)
	}

	return &LoginResult{
		User:               user,
		AccessToken:        token,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

// ChangePassword verifies the caller's current password and replaces it with
// a strength-checked new one, clearing the must-change flag. Read and write
// run in one transaction.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if ok, violations := auth.ValidateStrength(next); !ok {
		return fmt.Errorf("%w: password %s", common.ErrValidation, strings.Join(violations, ", "))
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("%w: hashing: %v", common.ErrInternal, err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)

		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrInvalidCredential
			}
			return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
		}
		if !s.hasher.Verify(current, user.PasswordHash) {
			return common.ErrInvalidCredential
		}

		return repo.UpdatePasswordHash(ctx, userID, hash, false)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}
