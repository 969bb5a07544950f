package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"MakerLens/pkg/logger"
)

// RequestLogging logs HTTP requests through the structured logger.
func RequestLogging(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			err := next(c)

			log.Info("http request",
				logger.String("method", req.Method),
				logger.String("uri", req.RequestURI),
				logger.Int("status", res.Status),
				logger.Duration("latency", time.Since(start)),
			)
			return err
		}
	}
}
