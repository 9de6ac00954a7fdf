// Package server initializes and runs the CMS authentication server.
// It validates configuration, opens the user store, wires the auth and
// user-administration services and serves the HTTP API until shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/openreach/cms-server/internal/logging"
	"github.com/openreach/cms-server/internal/server/auth"
	"github.com/openreach/cms-server/internal/server/config"
	"github.com/openreach/cms-server/internal/server/httpapi"
	"github.com/openreach/cms-server/internal/server/rbac"
	"github.com/openreach/cms-server/internal/server/repositories"
	"github.com/openreach/cms-server/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService *services.AuthService
	userService *services.UserService
	tokens      *auth.TokenService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := rbac.ValidateTable(); err != nil {
		return nil, err
	}

	db, err := repositories.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repositories.NewPostgresManager()
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService([]byte(cfg.SecretKey), cfg.AccessTokenTTL)
	lockout := auth.NewLockoutTracker(cfg.MaxLoginAttempts, cfg.LockDuration)

	as := services.NewAuthService(db, repos, hasher, tokens, lockout, logger)
	us := services.NewUserService(db, repos, hasher, logger)

	return &App{
		config:      cfg,
		logger:      logger,
		authService: as,
		userService: us,
		tokens:      tokens,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.logger, app.authService, app.userService, app.tokens)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "starting app", "addr", app.config.HTTPAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
