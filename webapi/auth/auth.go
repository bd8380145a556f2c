// Package auth exposes the signup, login, and logout endpoints.
package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nestbank/nestbank/config"
	authsvc "github.com/nestbank/nestbank/pkg/service/auth"
	"github.com/nestbank/nestbank/webapi/common"
	"github.com/nestbank/nestbank/webapi/middleware"
)

// Routes registers the authentication endpoints.
//
//   - POST /auth/signup : register a new user.
//   - POST /auth/login  : open a session, returns the bearer token.
//   - POST /auth/logout : close the caller's session.
func Routes(app *fiber.App, authSvc *authsvc.Service, cfg *config.AppConfig) {
	app.Post("/auth/signup", Signup(authSvc))
	app.Post("/auth/login", Login(authSvc))
	app.Post("/auth/logout", middleware.Protected(cfg.Session), middleware.SessionRequired(authSvc), Logout(authSvc))
}

// Signup returns the handler for user registration.
func Signup(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SignupRequest](c)
		if input == nil {
			return err
		}
		u, err := authSvc.Signup(c.Context(), input.Username, input.Email, input.Password)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Signup failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "User registered", u)
	}
}

// Login returns the handler for opening a session.
func Login(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginRequest](c)
		if input == nil {
			return err
		}
		token, u, err := authSvc.Login(c.Context(), input.Identity, input.Password)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Login failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Login successful", fiber.Map{
			"token": token,
			"user":  u,
		})
	}
}

// Logout returns the handler for closing the caller's session. Success is
// only reported when the session row was verifiably removed.
func Logout(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := middleware.SessionToken(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing session context", fiber.StatusUnauthorized)
		}
		if err := authSvc.Logout(c.Context(), token); err != nil {
			return common.ProblemDetailsJSON(c, "Logout failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Logged out", nil)
	}
}
