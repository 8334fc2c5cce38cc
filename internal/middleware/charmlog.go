// Package middleware holds echo middleware shared by the control socket.
package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// CharmLog logs each request through charmbracelet/log at debug level, and
// failed requests at error level.
func CharmLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			fields := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"latency", time.Since(start),
			}
			if err != nil || status >= 500 {
				log.Error("request failed", append(fields, "err", err)...)
			} else {
				log.Debug("request", fields...)
			}
			return nil
		}
	}
}
