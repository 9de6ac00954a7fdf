package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openreach/cms-server/internal/logging"
	"github.com/openreach/cms-server/internal/server/auth"
	"github.com/openreach/cms-server/internal/server/models"
	"github.com/openreach/cms-server/internal/server/rbac"
	"github.com/openreach/cms-server/internal/server/services"
)

// AuthOperations is the slice of AuthService the HTTP layer needs.
type AuthOperations interface {
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// UserOperations is the slice of UserService the HTTP layer needs.
type UserOperations interface {
	CreateUser(ctx context.Context, email, name string, role rbac.Role, password string, mustChange bool, createdBy *string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	SetRole(ctx context.Context, id string, role rbac.Role) error
	SetActive(ctx context.Context, id string, active bool) error
}

type Server struct {
	addr   string
	auth   AuthOperations
	users  UserOperations
	tokens *auth.TokenService
	logger logging.Logger
}

func NewServer(addr string, l logging.Logger, as AuthOperations, us UserOperations, tokens *auth.TokenService) *Server {
	return &Server{
		addr:   addr,
		logger: l.With("module", "http_server"),
		auth:   as,
		users:  us,
		tokens: tokens,
	}
}

// Router assembles the route tree. Authentication and authorization are
// composed as separate middleware layers, so "who are you" and "are you
// allowed" stay independently testable.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.Authenticate)

			r.Get("/auth/me", s.handleMe)
			r.Get("/auth/capabilities", s.handleCapabilities)
			// Any known role may change its own password; a corrupted or
			// retired role value fails closed here.
			r.With(s.RequireAnyRole(rbac.Roles()...)).Put("/auth/password", s.handleChangePassword)

			r.Route("/users", func(r chi.Router) {
				r.With(s.RequirePermission(rbac.ResourceUsers, rbac.ActionRead)).Get("/", s.handleListUsers)
				r.With(s.RequirePermission(rbac.ResourceUsers, rbac.ActionCreate)).Post("/", s.handleCreateUser)
				r.With(s.RequirePermission(rbac.ResourceRoles, rbac.ActionManage)).Put("/{id}/role", s.handleSetRole)
				r.With(s.RequirePermission(rbac.ResourceUsers, rbac.ActionUpdate)).Put("/{id}/active", s.handleSetActive)
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
