package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openreach/cms-server/internal/common"
	"github.com/openreach/cms-server/internal/server/rbac"
)

const bearerPrefix = "Bearer "

// Authenticate turns a bearer token into a principal. The token signature and
// expiry are checked first; the user is then re-loaded by subject ID so that
// role and activity status reflect the store, not stale claims. Missing or
// malformed credentials, unknown subjects and deactivated accounts all end as
// 401; the store being down is the one failure reported differently.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			unauthenticated(w)
			return
		}

		claims, err := s.tokens.VerifyAccessToken(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			unauthenticated(w)
			return
		}

		user, err := s.users.Get(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, common.ErrStoreUnavailable) {
				writeError(w, err)
				return
			}
			unauthenticated(w)
			return
		}
		if !user.Active {
			unauthenticated(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), user)))
	})
}

// RequireRole passes principals whose role sits at or above required in the
// hierarchy. Composes on top of Authenticate; an authenticated but
// under-privileged request gets a 403 naming the required role, never a 401.
func (s *Server) RequireRole(required rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				unauthenticated(w)
				return
			}
			if !rbac.HasEqualOrHigherPrivilege(p.Role, required) {
				forbidden(w, fmt.Sprintf("requires role %s or higher", required))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission passes principals whose role holds the exact
// (resource, action) permission.
func (s *Server) RequirePermission(resource rbac.Resource, action rbac.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				unauthenticated(w)
				return
			}
			if !rbac.HasPermission(p.Role, resource, action) {
				forbidden(w, fmt.Sprintf("requires permission %s:%s", resource, action))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole passes principals whose role is literally a member of the
// given set. This is an exact-match OR, intentionally distinct from the
// hierarchy comparison in RequireRole: a higher role is NOT implied.
func (s *Server) RequireAnyRole(roles ...rbac.Role) func(http.Handler) http.Handler {
	allowed := make(map[rbac.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				unauthenticated(w)
				return
			}
			if _, ok := allowed[p.Role]; !ok {
				forbidden(w, "role not permitted for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders applies the uniform response-hardening headers to every
// outbound response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}
