package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"codeframe-be/internal/pkg/apperrors"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// API error envelope. Classified errors keep their kind so clients can
// branch on it; everything else becomes an opaque 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		kind := apperrors.KindOf(err)
		status := apperrors.HTTPStatus(kind)

		message := apperrors.UserMessage(kind)
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && kind == apperrors.KindValidation {
			// Validation messages name the offending fields.
			message = appErr.Message
		}

		return ctx.Status(status).JSON(ErrorResponseWithKind(status, string(kind), message))
	}
}
