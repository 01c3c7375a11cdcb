package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

const (
	LocalLogger     = "logger"
	LocalRequestID  = "request_id"
	HeaderRequestID = "X-Request-ID"
)

// RequestObserver recibe la duración de cada petición. Lo implementa *metrics.Metrics.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// RequestLogger registra método, ruta, status y latencia de cada petición y deja en
// c.Locals un sublogger con el request id. observer puede ser nil.
func RequestLogger(log *logger.Logger, observer RequestObserver) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	base := log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(HeaderRequestID, reqID)
		c.Locals(LocalRequestID, reqID)
		c.Locals(LocalLogger, base.WithStr("request_id", reqID))

		chainErr := c.Next()
		if chainErr != nil {
			// El ErrorHandler escribe la respuesta; aquí solo se necesita el status final.
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path
		if observer != nil {
			observer.ObserveRequest(c.Method(), route, status, elapsed)
		}

		ev := base.Info()
		if status >= fiber.StatusInternalServerError {
			ev = base.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = base.Warn()
		}
		ev.Str("request_id", reqID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Msg("request")
		return nil
	}
}

// requestLog logger de la petición en curso; fuera del middleware devuelve uno nulo.
func requestLog(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(LocalLogger).(*logger.Logger); ok {
		return l
	}
	return logger.Nop()
}
