package auth

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/storefront-api/internal/apperror"
	"github.com/wichananm65/storefront-api/internal/user"
)

const currentUserKey = "currentUser"

// Protect verifies the bearer token signature and expiry and stores the
// parsed *jwt.Token under the "user" local.
func Protect(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: secret,
		Claims:     &Claims{},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperror.Respond(c, ErrUnauthenticated)
		},
	})
}

// LoadUser resolves the token stored by Protect to a user record.
func LoadUser(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return apperror.Respond(c, ErrUnauthenticated)
		}
		claims, _ := token.Claims.(*Claims)

		u, err := svc.UserForClaims(c.UserContext(), claims)
		if err != nil {
			return apperror.Respond(c, err)
		}
		SetCurrentUser(c, u)
		return c.Next()
	}
}

func RequireRoleMiddleware(role user.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := CurrentUser(c)
		if !ok {
			return apperror.Respond(c, ErrUnauthenticated)
		}
		if _, err := RequireRole(u, role); err != nil {
			return apperror.Respond(c, err)
		}
		return c.Next()
	}
}

func SetCurrentUser(c *fiber.Ctx, u user.User) {
	c.Locals(currentUserKey, u)
}

func CurrentUser(c *fiber.Ctx) (user.User, bool) {
	u, ok := c.Locals(currentUserKey).(user.User)
	return u, ok
}
