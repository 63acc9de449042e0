package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// HTTPObserver is satisfied by *metrics.Metrics.
type HTTPObserver interface {
	ObserveHTTP(method, path, status string, seconds float64)
}

// Metrics records one observation per request, labelled by route template so ids
// in the URL never create new series.
func Metrics(obs HTTPObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				// resolve the final status before observing it
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			obs.ObserveHTTP(c.Request().Method, path, strconv.Itoa(c.Response().Status), time.Since(start).Seconds())
			return nil
		}
	}
}
