// Package router assembles the fiber application: shared middleware, the
// health probe and every feature's routes behind the right gate.
package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/storefront-api/internal/apperror"
	"github.com/wichananm65/storefront-api/internal/auth"
	"github.com/wichananm65/storefront-api/internal/cart"
	"github.com/wichananm65/storefront-api/internal/category"
	"github.com/wichananm65/storefront-api/internal/checkout"
	"github.com/wichananm65/storefront-api/internal/logging"
	"github.com/wichananm65/storefront-api/internal/order"
	"github.com/wichananm65/storefront-api/internal/product"
	"github.com/wichananm65/storefront-api/internal/user"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Auth       *auth.Handler
	Products   *product.Handler
	Categories *category.Handler
	Cart       *cart.Handler
	Checkout   *checkout.Handler
	Orders     *order.Handler
}

type Options struct {
	Logger       logrus.FieldLogger
	CORSOrigins  string
	AccessSecret []byte
	AuthService  *auth.Service
	DB           Pinger
}

var (
	authenticatedPrefixes = []string{"/auth/me", "/cart", "/checkout", "/orders", "/admin"}
	userPrefixes          = []string{"/cart", "/checkout", "/orders"}
)

func New(h Handlers, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          apperror.FiberErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logging.Middleware(opts.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", health(opts.DB))

	// gates must be registered before the routes they cover
	app.Use(authenticatedPrefixes, auth.Protect(opts.AccessSecret), auth.LoadUser(opts.AuthService))
	app.Use(userPrefixes, auth.RequireRoleMiddleware(user.RoleUser))
	app.Use("/admin", auth.RequireRoleMiddleware(user.RoleAdmin))

	h.Auth.RegisterPublicRoutes(app)
	h.Auth.RegisterProtectedRoutes(app)
	h.Products.RegisterPublicRoutes(app)
	h.Products.RegisterAdminRoutes(app)
	h.Categories.RegisterPublicRoutes(app)
	h.Cart.RegisterProtectedRoutes(app)
	h.Checkout.RegisterProtectedRoutes(app)
	h.Orders.RegisterProtectedRoutes(app)

	return app
}

func health(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return apperror.Respond(c, err)
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
