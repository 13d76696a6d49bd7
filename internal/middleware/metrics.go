package middleware

import (
	"time"

	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records count and duration of every HTTP request
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			// write the error response so the recorded status is the real one
			c.Error(err)
		}

		// Route pattern, not the raw path, to keep label cardinality bounded
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		prometheus.RecordHTTPRequest(c.Request().Method, path, c.Response().Status, time.Since(start))

		return nil
	}
}
