package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nestbank/nestbank/app"
	"github.com/nestbank/nestbank/config"
	"github.com/nestbank/nestbank/infra"
	infrarepo "github.com/nestbank/nestbank/infra/repository"
	"github.com/nestbank/nestbank/infra/throttle"
	authsvc "github.com/nestbank/nestbank/pkg/service/auth"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	logger := newLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}
	defer infra.Close(db)

	if err := infrarepo.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// The login throttle is an optional hardening layer. A missing redis
	// should not keep the service from starting.
	var loginThrottle authsvc.Throttle
	redisClient, err := throttle.NewClient(context.Background(), cfg.Redis.Addr)
	if err != nil {
		logger.Warn("redis unavailable, login throttling disabled", "addr", cfg.Redis.Addr, "error", err)
	} else {
		defer redisClient.Close()
		loginThrottle = throttle.New(redisClient, cfg.LoginThrottle.MaxAttempts, cfg.LoginThrottle.Window)
	}

	a := app.New(app.Deps{
		Cfg:      cfg,
		Uow:      infra.NewUoW(db),
		Throttle: loginThrottle,
		Logger:   logger,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		logger.Info("starting server", "env", cfg.Env, "address", addr)
		errCh <- a.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.ShutdownWithContext(ctx)
	}
}

func newLogger() *slog.Logger {
	if os.Getenv("APP_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
