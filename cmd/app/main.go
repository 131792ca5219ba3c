package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/storefront-api/internal/auth"
	"github.com/wichananm65/storefront-api/internal/cart"
	"github.com/wichananm65/storefront-api/internal/category"
	"github.com/wichananm65/storefront-api/internal/checkout"
	"github.com/wichananm65/storefront-api/internal/config"
	"github.com/wichananm65/storefront-api/internal/database"
	"github.com/wichananm65/storefront-api/internal/interface/http/router"
	"github.com/wichananm65/storefront-api/internal/logging"
	"github.com/wichananm65/storefront-api/internal/mail"
	"github.com/wichananm65/storefront-api/internal/order"
	"github.com/wichananm65/storefront-api/internal/product"
	"github.com/wichananm65/storefront-api/internal/user"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "storefront HTTP API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "apply pending migrations and start the HTTP server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "apply every pending migration",
						Action: migrateUp,
					},
					{
						Name:  "down",
						Usage: "roll back migrations",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
						},
						Action: migrateDown,
					},
				},
			},
			{
				Name:  "create-admin",
				Usage: "create an administrator account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
				},
				Action: createAdmin,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("storefront exited")
	}
}

type env struct {
	cfg config.Config
	log *logrus.Logger
	db  *sql.DB
}

func bootstrap(ctx context.Context) (env, error) {
	cfg, err := config.Load()
	if err != nil {
		return env{}, err
	}
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		return env{}, err
	}
	return env{cfg: cfg, log: log, db: db}, nil
}

func serve(c *cli.Context) error {
	e, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer e.db.Close()

	if err := database.MigrateUp(e.db); err != nil {
		return err
	}

	app := buildApp(e)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.log.WithField("addr", e.cfg.Addr).Info("listening")
		if err := app.Listen(e.cfg.Addr); err != nil {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		e.log.Info("shutting down")
		return app.ShutdownWithTimeout(e.cfg.ShutdownTimeout)
	})
	return g.Wait()
}

func buildApp(e env) *fiber.App {
	users := user.NewService(user.NewPostgresRepository(e.db), e.cfg.AllowedEmailDomains)
	issuer := auth.NewIssuer(e.cfg.JWTSecret, e.cfg.RefreshSecret, e.cfg.AccessTokenTTL, e.cfg.RefreshTokenTTL)
	authSvc := auth.NewService(users, issuer, auth.NewPostgresResetRepository(e.db), newMailer(e), auth.Options{
		ResetTTL:      e.cfg.ResetTokenTTL,
		PublicBaseURL: e.cfg.PublicBaseURL,
		Logger:        e.log,
	})

	products := product.NewService(product.NewPostgresRepository(e.db))
	categories := category.NewService(category.NewPostgresRepository(e.db))
	carts := cart.NewService(cart.NewPostgresRepository(e.db), products, e.log)
	orders := order.NewService(order.NewPostgresRepository(e.db))
	checkouts := checkout.NewService(checkout.NewPostgresStore(e.db))

	return router.New(router.Handlers{
		Auth:       auth.NewHandler(authSvc),
		Products:   product.NewHandler(products),
		Categories: category.NewHandler(categories),
		Cart:       cart.NewHandler(carts),
		Checkout:   checkout.NewHandler(checkouts),
		Orders:     order.NewHandler(orders),
	}, router.Options{
		Logger:       e.log,
		CORSOrigins:  e.cfg.CORSOrigins,
		AccessSecret: issuer.AccessSecret(),
		AuthService:  authSvc,
		DB:           e.db,
	})
}

func newMailer(e env) mail.Mailer {
	if e.cfg.SMTP.Host == "" {
		e.log.Warn("SMTP_HOST not set, password reset links will only be logged")
		return mail.NewLogMailer(e.log)
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     e.cfg.SMTP.Host,
		Port:     e.cfg.SMTP.Port,
		Username: e.cfg.SMTP.Username,
		Password: e.cfg.SMTP.Password,
		From:     e.cfg.SMTP.From,
	})
}

func migrateUp(c *cli.Context) error {
	e, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer e.db.Close()

	if err := database.MigrateUp(e.db); err != nil {
		return err
	}
	return logVersion(e)
}

func migrateDown(c *cli.Context) error {
	e, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer e.db.Close()

	if err := database.MigrateDown(e.db, c.Int("steps")); err != nil {
		return err
	}
	return logVersion(e)
}

func logVersion(e env) error {
	version, dirty, err := database.Version(e.db)
	if err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("schema version")
	return nil
}

func createAdmin(c *cli.Context) error {
	e, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer e.db.Close()

	users := user.NewService(user.NewPostgresRepository(e.db), nil)
	u, err := users.Register(c.Context, c.String("name"), c.String("email"), c.String("password"), user.RoleAdmin)
	if err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("admin created")
	return nil
}
