package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// LoggerMiddleware logs one line per request with status and latency.
func LoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			path := req.URL.Path
			if req.URL.RawQuery != "" {
				path += "?" + req.URL.RawQuery
			}

			log.Printf("%s %s -> %d (%dms) from %s",
				req.Method, path, res.Status, time.Since(start).Milliseconds(), c.RealIP())

			return nil
		}
	}
}
