package middleware

import (
	"cinestream/internal/metrics"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Metrics records request counts and latency labelled by the matched route
// pattern, so /media/1 and /media/2 share a series.
func (m *Middleware) Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Method and route alias fasthttp buffers that are reused by the next
		// request; prometheus keeps label strings, so they must be copied.
		method := utils.CopyString(c.Method())
		route := "unmatched"
		if matched := c.Route(); matched != nil && matched.Path != "" {
			route = utils.CopyString(matched.Path)
		}

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

		return err
	}
}
