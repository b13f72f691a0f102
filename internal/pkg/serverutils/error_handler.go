package serverutils

import (
	"errors"
	"log"

	"voicenotes-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts typed errors bubbling out of handlers
// into the uniform response envelope. Anything untyped is treated as a
// server failure and logged with its cause.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= fiber.StatusInternalServerError {
				log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), appErr)
			}
			return ctx.Status(appErr.Code).JSON(ErrorResponse(appErr.Code, appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Printf("[ERROR] %s %s: unhandled: %v", ctx.Method(), ctx.Path(), err)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}
}
