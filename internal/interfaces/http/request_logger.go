package http

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-manager/pkg/logger"
)

const localLogger = "logger"

// HTTPMetrics contador de peticiones (lo implementa metrics.Collectors).
type HTTPMetrics interface {
	HTTPRequest(method string, status int)
}

// RequestLogger registra método, ruta, status y latencia de cada petición.
func RequestLogger(log *logger.Logger, m HTTPMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.Locals(localLogger, log)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("role", GetRole(c)).
			Msg("request")
		if m != nil {
			m.HTTPRequest(c.Method(), status)
		}
		return err
	}
}

func loggerFrom(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(localLogger).(*logger.Logger); ok {
		return l
	}
	return logger.Nop()
}
