package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/openreach/cms-server/internal/common"
	"github.com/openreach/cms-server/internal/logging"
	"github.com/openreach/cms-server/internal/server/auth"
	"github.com/openreach/cms-server/internal/server/models"
	"github.com/openreach/cms-server/internal/server/rbac"
	"github.com/openreach/cms-server/internal/server/repositories"
)

// UserService covers account lifecycle: provisioning, role changes and
// activation toggles. Deleting rows is out of its hands; accounts are only
// ever deactivated here.
type UserService struct {
	db     *sql.DB
	repos  repositories.Manager
	hasher *auth.PasswordHasher
	logger logging.Logger
}

func NewUserService(db *sql.DB, m repositories.Manager, hasher *auth.PasswordHasher, logger logging.Logger) *UserService {
	return &UserService{
		db:     db,
		repos:  m,
		hasher: hasher,
		logger: logger.With("module", "user_service"),
	}
}

// CreateUser provisions an account with the given role and password. The
// password is strength-checked and hashed; mustChange forces a password
// change on first login (the usual choice for admin-set temporary secrets).
// createdBy records the provisioning administrator, nil for bootstrap.
func (s *UserService) CreateUser(ctx context.Context, email, name string, role rbac.Role,
	password string, mustChange bool, createdBy *string) (*models.User, error) {

	normalized := NormalizeEmail(email)
	if !emailRe.MatchString(normalized) {
		return nil, fmt.Errorf("%w: malformed email", common.ErrValidation)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}
	if ok, violations := auth.ValidateStrength(password); !ok {
		return nil, fmt.Errorf("%w: password %s", common.ErrValidation, strings.Join(violations, ", "))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hashing: %v", common.ErrInternal, err)
	}

	user := &models.User{
		Email:              normalized,
		Name:               name,
		PasswordHash:       hash,
		Role:               role,
		Active:             true,
		MustChangePassword: mustChange,
		CreatedBy:          createdBy,
	}

	created, err := s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	s.logger.Info(ctx, "account provisioned", "user_id", created.ID, "role", created.Role)
	return created, nil
}

// Get loads an account by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repos.Users(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return user, nil
}

// List returns all accounts, oldest first.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repos.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return users, nil
}

// SetRole assigns a new role. Unknown roles fail closed with a validation
// error, never a silent default.
func (s *UserService) SetRole(ctx context.Context, id string, role rbac.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}
	if err := s.repos.Users(s.db).UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	s.logger.Info(ctx, "role changed", "user_id", id, "role", role)
	return nil
}

// SetActive toggles the account's active flag.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repos.Users(s.db).SetActive(ctx, id, active); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	s.logger.Info(ctx, "active flag changed", "user_id", id, "active", active)
	return nil
}

// TemporaryPassword generates a random password that satisfies the strength
// rules, for admin-provisioned accounts whose owner sets a real one at first
// login.
func TemporaryPassword() (string, error) {
	base, err := common.MakeRandHexString(9)
	if err != nil {
		return "", err
	}
	// The hex base covers lowercase and digits; the suffix covers the rest.
	return base + "!Xy7", nil
}
