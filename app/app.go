// Package app assembles the HTTP application: services, middleware, and
// routes.
package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/nestbank/nestbank/config"
	"github.com/nestbank/nestbank/pkg/accountnumber"
	"github.com/nestbank/nestbank/pkg/repository"
	authsvc "github.com/nestbank/nestbank/pkg/service/auth"
	"github.com/nestbank/nestbank/pkg/service/ledger"
	webaccount "github.com/nestbank/nestbank/webapi/account"
	webauth "github.com/nestbank/nestbank/webapi/auth"
	"github.com/nestbank/nestbank/webapi/common"
)

// Deps carries everything the application needs from the outside world.
type Deps struct {
	Cfg      *config.AppConfig
	Uow      repository.UnitOfWork
	Numbers  accountnumber.Generator
	Throttle authsvc.Throttle
	Logger   *slog.Logger
}

// New builds the fiber application with all routes registered.
func New(deps Deps) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	numbers := deps.Numbers
	if numbers == nil {
		numbers = accountnumber.New()
	}

	authService := authsvc.New(deps.Uow, deps.Throttle, deps.Cfg.Session, logger)
	ledgerService := ledger.New(deps.Uow, numbers, logger)

	app := fiber.New(fiber.Config{
		AppName:      "nestbank",
		ErrorHandler: errorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(limiter.New(limiter.Config{
		Max:        deps.Cfg.RateLimit.MaxRequests,
		Expiration: deps.Cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if ip := c.Get("X-Forwarded-For"); ip != "" {
				return ip
			}
			if ip := c.Get("X-Real-IP"); ip != "" {
				return ip
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(c, "Too many requests", nil,
				"request rate limit exceeded, retry later", fiber.StatusTooManyRequests)
		},
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "ok", fiber.Map{
			"time": time.Now().UTC(),
		})
	})

	webauth.Routes(app, authService, deps.Cfg)
	webaccount.Routes(app, ledgerService, authService, deps.Cfg)

	return app
}

// errorHandler renders errors that escape the handlers, fiber routing errors
// included, as problem details.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return common.ProblemDetailsJSON(c, fiberErr.Message, nil, fiberErr.Code)
		}
		logger.Error("unhandled error", "path", c.Path(), "error", err)
		return common.ProblemDetailsJSON(c, "Internal server error", nil,
			"an unexpected error occurred", fiber.StatusInternalServerError)
	}
}
