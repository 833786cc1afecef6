package serverutils

import (
	"errors"

	"knowledge-hub-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error returned by a handler to its HTTP status code.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	var reqErr *RequestValidationError
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &reqErr), apperror.IsValidation(err):
		return fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperror.ErrIllegalTransition):
		return fiber.StatusConflict
	case errors.Is(err, apperror.ErrQueueUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler is the fiber.Config ErrorHandler. Every error leaves the API in the
// BaseResponse envelope.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := StatusFor(err)

	var reqErr *RequestValidationError
	if errors.As(err, &reqErr) {
		return ctx.Status(code).JSON(ValidationErrorResponse("Validation failed", reqErr.Fields))
	}

	message := err.Error()
	if code == fiber.StatusInternalServerError {
		message = "Internal server error"
	}
	return ctx.Status(code).JSON(ErrorResponse(code, message))
}

// ErrorHandlerMiddleware converts errors of the handlers behind it before fiber's default
// handler sees them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return ErrorHandler(ctx, err)
	}
}
