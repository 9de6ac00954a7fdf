// Package httpapi mounts the auth core on an HTTP router: bearer-token
// authentication, role/permission gates, uniform security headers, and the
// account endpoints. Handlers never touch the store directly; they go through
// the services layer.
package httpapi

import (
	"context"

	"github.com/openreach/cms-server/internal/server/models"
)

type ctxKey string

const principalKey ctxKey = "principal"

// PrincipalFromContext returns the authenticated user attached by
// Authenticate, or false when the request was not authenticated.
func PrincipalFromContext(ctx context.Context) (*models.User, bool) {
	p, ok := ctx.Value(principalKey).(*models.User)
	return p, ok
}

func withPrincipal(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, principalKey, u)
}
