// Package testutil holds helpers shared by handler tests.
package testutil

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront-api/internal/apperror"
	"github.com/wichananm65/storefront-api/internal/auth"
	"github.com/wichananm65/storefront-api/internal/user"
)

// NewApp builds an app with a bootstrap middleware that stores a current
// user when the X-User-ID header is present, with the role taken from
// X-User-Role (default "user"). Requests without the header stay anonymous.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperror.FiberErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				role := user.Role(c.Get("X-User-Role"))
				if role == "" {
					role = user.RoleUser
				}
				auth.SetCurrentUser(c, user.User{ID: id, Email: "user" + v + "@example.com", Role: role})
			}
		}
		return c.Next()
	})
	return app
}

// RequireUser rejects anonymous requests the way the bearer gate does.
func RequireUser(c *fiber.Ctx) error {
	if _, ok := auth.CurrentUser(c); !ok {
		return apperror.Respond(c, auth.ErrUnauthenticated)
	}
	return c.Next()
}
