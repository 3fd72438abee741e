package serverutils

import (
	"errors"
	"fmt"
	"runtime/debug"

	"fundocs-be/internal/pkg/logger"
	"fundocs-be/pkg/contentapi"

	"github.com/gofiber/fiber/v2"
)

var errorLogger logger.ILogger = logger.NewNopLogger()

// SetErrorLogger sets where unexpected errors and panics are reported.
func SetErrorLogger(l logger.ILogger) {
	if l != nil {
		errorLogger = l
	}
}

// ErrorHandler is used as fiber.Config.ErrorHandler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	if appErr, ok := AsAppError(err); ok {
		if appErr.Code >= fiber.StatusInternalServerError {
			errorLogger.Error("HTTP", appErr.Message, map[string]interface{}{
				"path":  ctx.Path(),
				"error": appErr.Error(),
			})
		}
		var data interface{}
		if appErr.Data != nil {
			data = appErr.Data
		}
		return ctx.Status(appErr.Code).JSON(ErrorResponseWithData(appErr.Code, appErr.Message, data))
	}

	if apiErr, ok := contentapi.AsAPIError(err); ok {
		errorLogger.Warn("HTTP", "Content API error", map[string]interface{}{
			"path":   ctx.Path(),
			"status": apiErr.Status,
			"error":  apiErr.Message,
		})
		return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(fiber.StatusBadGateway, apiErr.Message))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	errorLogger.Error("HTTP", "Unhandled error", map[string]interface{}{
		"path":   ctx.Path(),
		"method": ctx.Method(),
		"error":  err.Error(),
	})
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
}

// ErrorHandlerMiddleware recovers panics and renders returned errors in the
// standard envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				errorLogger.Error("HTTP", "Recovered from panic", map[string]interface{}{
					"path":  ctx.Path(),
					"panic": fmt.Sprint(r),
					"stack": string(debug.Stack()),
				})
				err = ErrorHandler(ctx, NewInternal("Internal server error", fmt.Errorf("panic: %v", r)))
			}
		}()

		if err = ctx.Next(); err != nil {
			return ErrorHandler(ctx, err)
		}
		return nil
	}
}
