package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "board/internal/adapter/http"
	"board/internal/adapter/memory"
	"board/internal/adapter/postgres"
	"board/internal/adapter/redis"
	"board/internal/app"
	"board/internal/config"
	"board/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/oauth2"
)

const shutdownTimeout = 10 * time.Second

// store is what the services need from a storage backend.
type store interface {
	domain.PostRepository
	domain.UserRepository
	domain.HealthChecker
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("exit", "err", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == config.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var (
		st       store
		sessions domain.SessionRepository
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		mem := memory.New()
		st = mem
		sessions = mem.NewSessionRepo()
		logger.Warn("using in-memory store; data is lost on exit")
	default:
		db, err := postgres.Open(cfg.DatabaseURL, cfg.AutoMigrate)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer func() { _ = db.Close() }()
		st = db
		sessions = postgres.NewSessionRepo(db)
	}

	if cfg.SessionStore == config.SessionsRedis {
		rs, err := redis.Open(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis open: %w", err)
		}
		defer func() { _ = rs.Close() }()
		sessions = rs
	}

	if !cfg.AdminConfigured() {
		logger.Warn("no admin password configured; admin login is disabled", "username", cfg.AdminUsername)
	}

	creds := app.NewBcryptCredentials()
	authSvc := app.NewAuthService(st, sessions, creds, app.AdminCredential{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
	}, cfg.SessionTTL)
	if err := authSvc.SweepExpired(ctx); err != nil {
		logger.Warn("sweep expired sessions", "err", err)
	}

	oidcCfg, err := newOIDC(ctx, cfg.OIDC)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := adapthttp.New(adapthttp.Options{
		Posts:          app.NewPostService(st, creds),
		Members:        app.NewMemberService(st, authSvc.AdminUsername()),
		Auth:           authSvc,
		Status:         app.NewStatusService(st),
		Logger:         logger,
		Registry:       reg,
		WebDir:         cfg.WebDir,
		CookieSecure:   cfg.CookieSecure,
		AllowAnonymous: cfg.AllowAnonymous,
		OIDC:           oidcCfg,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	logger.Info("listening", "addr", cfg.Addr, "store", cfg.StoreDriver, "sessions", cfg.SessionStore)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func newOIDC(ctx context.Context, cfg config.OIDC) (adapthttp.OIDCConfig, error) {
	if !cfg.Enabled() {
		return adapthttp.OIDCConfig{}, nil
	}
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, fmt.Errorf("oidc provider: %w", err)
	}
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}
