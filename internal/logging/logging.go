// Package logging builds the process logger and the per-request log entry
// shared by handlers.
package logging

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const entryKey = "logEntry"

// New builds a logger writing to out. level is a logrus level name; format is
// "json" or anything else for text.
func New(out io.Writer, level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}
	return logger
}

// Middleware attaches a request scoped entry to the context and logs one line
// per request once the handler chain has returned.
func Middleware(logger logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, requestID)

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Method(),
			"path":       c.Path(),
		})
		c.Locals(entryKey, entry)

		err := c.Next()
		if err != nil {
			// let the app error handler write the response before we read the status
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusServiceUnavailable)
			}
		}

		entry.WithFields(logrus.Fields{
			"status":   c.Response().StatusCode(),
			"duration": time.Since(start).String(),
			"ip":       c.IP(),
		}).Info("request")
		return nil
	}
}

// FromCtx returns the request entry, or a discard entry when the middleware
// was not installed (tests).
func FromCtx(c *fiber.Ctx) logrus.FieldLogger {
	if entry, ok := c.Locals(entryKey).(*logrus.Entry); ok {
		return entry
	}
	return Discard()
}

// Discard is a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
