package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger tags every request with a generated id and logs one line per
// completed request.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := uuid.New().String()
			c.Response().Header().Set("X-Request-ID", requestID)

			start := time.Now()
			err := next(c)

			event := logger.Info()
			if err != nil {
				event = logger.Error().Err(err)
			}
			event.Str("request_id", requestID).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Msg("Request completed")

			return err
		}
	}
}
