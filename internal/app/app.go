// Package app assembles the stores, services and HTTP server from config.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"

	"artisthub/artist-ms/internal/artist"
	"artisthub/artist-ms/internal/audit"
	"artisthub/artist-ms/internal/auth"
	"artisthub/artist-ms/internal/config"
	"artisthub/artist-ms/internal/httpserver"
	"artisthub/artist-ms/internal/migrations"
	"artisthub/artist-ms/internal/music"
	"artisthub/artist-ms/internal/observability"
	"artisthub/artist-ms/internal/session"
	"artisthub/artist-ms/internal/user"
)

type App struct {
	cfg    config.Config
	log    *slog.Logger
	db     *sql.DB
	server *httpserver.Server
}

func New(cfg config.Config) (*App, error) {
	logger := observability.NewLogger()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	migrationService, err := migrations.NewService(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create migration service: %w", err)
	}
	if err := migrationService.Apply(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	userStore, err := user.NewPostgresStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create user store: %w", err)
	}
	artistStore, err := artist.NewPostgresStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create artist store: %w", err)
	}
	musicStore, err := music.NewPostgresStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create music store: %w", err)
	}

	sessions := session.NewStore(cfg.Session.TTL)
	authService, err := auth.NewService(userStore, sessions)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create auth service: %w", err)
	}

	if err := bootstrapAdmin(userStore, cfg.Bootstrap, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	auditLogger := audit.NewLogger(cfg.AuditLogFile)

	server := httpserver.New(cfg.HTTP, httpserver.Deps{
		Auth:      authService,
		Users:     userStore,
		Artists:   artistStore,
		Music:     musicStore,
		Audit:     auditLogger,
		ClientDir: cfg.ClientDir,
		Logger:    logger,
	})

	return &App{
		cfg:    cfg,
		log:    logger,
		db:     db,
		server: server,
	}, nil
}

// bootstrapAdmin guarantees one super_admin account exists so a fresh
// deployment can be logged into.
func bootstrapAdmin(users *user.PostgresStore, cfg config.BootstrapConfig, logger *slog.Logger) error {
	_, err := users.GetByEmail(cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("check bootstrap admin: %w", err)
	}

	_, err = users.Create(user.User{
		FirstName: "Super",
		LastName:  "Admin",
		Email:     cfg.AdminEmail,
		Role:      user.RoleSuperAdmin,
	}, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	logger.Info("bootstrap super_admin created", "email", cfg.AdminEmail)
	return nil
}

func (a *App) Run(ctx context.Context) error {
	defer func() {
		_ = a.db.Close()
	}()

	errCh := make(chan error, 1)

	go func() {
		a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)
		errCh <- a.server.Start()
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server exited: %w", err)
	}
}
