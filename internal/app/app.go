package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkadlec/theater-api/internal/config"
	"github.com/mkadlec/theater-api/internal/notifier"
	"github.com/mkadlec/theater-api/internal/postgres"
	"github.com/mkadlec/theater-api/internal/redis"
	postgresrepo "github.com/mkadlec/theater-api/internal/repository/postgres"
	redisrepo "github.com/mkadlec/theater-api/internal/repository/redis"
	"github.com/mkadlec/theater-api/internal/service"
	httpgin "github.com/mkadlec/theater-api/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redis.New(context.Background(), redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	if err := store.InitSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	tokens := redisrepo.NewTokenStore(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "theater:v1:rl", 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	var mailer notifier.Notifier
	if cfg.SMTP.Host != "" {
		mailer = notifier.NewSMTPNotifier(notifier.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		})
	} else {
		mailer = notifier.NewLogNotifier(logger)
	}

	// Initialize services
	services := service.NewServices(store, tokens, limiter, mailer, logger)

	if cfg.Admin.Password != "" {
		if err := services.Identity.EnsureAdmin(
			context.Background(),
			cfg.Admin.Username,
			cfg.Admin.Email,
			cfg.Admin.Password,
		); err != nil {
			return nil, fmt.Errorf("failed to ensure admin account: %w", err)
		}
	}

	// Initialize Gin router
	router := httpgin.NewRouter(services, tokens, idempotencyStore, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
