package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/david-crosby/Ripple/internal/pkg/ratelimit"
	"github.com/david-crosby/Ripple/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RateLimit admits at most spec.Max requests per client IP per window on one endpoint.
// A limiter backend failure lets the request through.
func RateLimit(l ratelimit.Limiter, endpoint string, spec ratelimit.Spec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := endpoint + ":" + c.IP()

		decision, err := l.Admit(c.UserContext(), key, spec)
		if err != nil {
			zap.L().Warn("rate limiter unavailable, admitting request",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Set("X-RateLimit-Reset", strconv.Itoa(seconds(decision.ResetAfter)))

		if !decision.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds(decision.RetryAfter)))
			return response.ErrorWithCode(c, fiber.StatusTooManyRequests, "RATE_LIMITED",
				"Too many requests. Please try again later.", nil)
		}

		return c.Next()
	}
}

// seconds rounds up so clients never retry early
func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
