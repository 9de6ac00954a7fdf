package users

import (
	"context"

	"github.com/openreach/cms-server/internal/server/models"
	"github.com/openreach/cms-server/internal/server/rbac"
)

// Repository is the narrow user-store contract the auth core depends on.
// Lookups return common.ErrNotFound for absent users; writes touch only the
// fields named by the method.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)

	// UpdateLoginState persists the post-attempt counter, lock expiry and
	// last-login timestamp in a single statement.
	UpdateLoginState(ctx context.Context, id string, state models.LoginState) error
	UpdatePasswordHash(ctx context.Context, id, hash string, mustChangePassword bool) error
	UpdateRole(ctx context.Context, id string, role rbac.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context) ([]*models.User, error)
}
