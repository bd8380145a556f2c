// Package common holds the response envelope, problem-details rendering,
// and request binding shared by all webapi handlers.
package common

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nestbank/nestbank/pkg/domain"
	"github.com/nestbank/nestbank/pkg/service/auth"
)

// Response is the standard envelope for success cases.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// SuccessResponseJSON writes the success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ProblemDetailsJSON writes a problem-details response. The status is taken
// from the error's domain kind unless overridden with an explicit int in
// extras; a string in extras becomes the detail text.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, extras ...any) error {
	status := ErrorToStatusCode(err)
	pd := ProblemDetails{
		Type:  "about:blank",
		Title: title,
	}
	if err != nil {
		pd.Detail = err.Error()
	}
	for _, extra := range extras {
		switch v := extra.(type) {
		case int:
			status = v
		case string:
			pd.Detail = v
		}
	}
	pd.Status = status
	pd.Instance = c.OriginalURL()
	return c.Status(status).JSON(pd, "application/problem+json")
}

// ErrorToStatusCode maps domain error kinds to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return fiber.StatusInternalServerError
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidState):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrTooManyAttempts):
		return fiber.StatusTooManyRequests
	case errors.Is(err, domain.ErrResourceExhausted):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

var validate = validator.New()

// BindAndValidate parses the request body into T and validates it. On
// failure the error response has already been written and the returned
// pointer is nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", nil, err.Error(), fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		return nil, ProblemDetailsJSON(c, "Validation failed", nil, err.Error(), fiber.StatusBadRequest)
	}
	return &input, nil
}
