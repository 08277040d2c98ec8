package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Observer receives the latency of every completed request.
type Observer interface {
	ObserveRequest(seconds float64)
}

// RequestMetrics feeds each request's wall-clock latency to the observer
// once the handler chain returns. The scrape endpoint itself is excluded
// so monitoring traffic does not inflate the request counters.
func RequestMetrics(obs Observer, skipPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if obs == nil || c.Path() == skipPath {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			obs.ObserveRequest(time.Since(start).Seconds())
			return err
		}
	}
}
