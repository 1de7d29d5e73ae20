package http

import (
	"time"

	"portfolio-generator/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	localsLogger    = "logger"
)

// RequestLogger tags every request with an id and stores a logger carrying
// it in the request locals.
func RequestLogger(base *logger.Logger) fiber.Handler {
	if base == nil {
		base = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		id := c.Get(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)

		log := base.With("request_id", id)
		c.Locals(localsLogger, log)

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		fields := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
		return err
	}
}

func requestLogger(c *fiber.Ctx) *logger.Logger {
	if log, ok := c.Locals(localsLogger).(*logger.Logger); ok {
		return log
	}
	return logger.Nop()
}
