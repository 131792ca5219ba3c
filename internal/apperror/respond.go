package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront-api/internal/logging"
)

type body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Respond writes err as a JSON error body. Untyped errors are treated as
// store failures: logged and reported as 503.
func Respond(c *fiber.Ctx, err error) error {
	appErr, ok := As(err)
	if !ok {
		logging.FromCtx(c).WithError(err).Error("request failed")
	}
	return c.Status(Status(appErr.Kind)).JSON(body{Code: appErr.Code, Message: appErr.Message})
}

// FiberErrorHandler is installed as fiber.Config.ErrorHandler so errors that
// escape a handler (body parsing, unknown routes, middleware) get the same
// shape as handled ones.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "ValidationError"
		switch fe.Code {
		case fiber.StatusUnauthorized:
			code = "Unauthenticated"
		case fiber.StatusForbidden:
			code = "Forbidden"
		case fiber.StatusNotFound:
			code = "NotFound"
		case fiber.StatusMethodNotAllowed:
			code = "MethodNotAllowed"
		}
		if fe.Code >= fiber.StatusInternalServerError {
			logging.FromCtx(c).WithError(err).Error("request failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(body{Code: ErrUnavailable.Code, Message: ErrUnavailable.Message})
		}
		return c.Status(fe.Code).JSON(body{Code: code, Message: fe.Message})
	}
	return Respond(c, err)
}
