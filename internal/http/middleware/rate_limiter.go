package middleware

import (
	"fmt"
	"sync"

	"erp-bff/internal/auth"
	apperrors "erp-bff/pkg/errors"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const msgRateLimitExceeded = "rate limit exceeded"

// RateLimiter implements token bucket rate limiting per identity
type RateLimiter struct {
	limiters sync.Map // key -> *rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter
// requestsPerSecond: number of requests allowed per second
// burst: maximum burst size
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
	}
}

// getLimiter gets or creates a rate limiter for the given key
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	limiter, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	return limiter.(*rate.Limiter)
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware keys by session subject once a session is resolved and by
// client IP before that.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if s, ok := auth.SessionFrom(c); ok {
				key = "user:" + s.Subject
			}

			limiter := rl.getLimiter(key)

			if !limiter.Allow() {
				c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				c.Response().Header().Set("Retry-After", "1")

				appErr := &apperrors.AppError{Kind: apperrors.KindTooManyRequests, Message: msgRateLimitExceeded}
				return c.JSON(appErr.Status(), appErr.Body())
			}

			tokens := int(limiter.Tokens())
			c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))
			c.Response().Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", tokens))

			return next(c)
		}
	}
}

// NewStrictRateLimiter guards sign-in against credential stuffing.
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// NewGlobalRateLimiter is the lenient limiter for general API usage.
func NewGlobalRateLimiter() *RateLimiter {
	return NewRateLimiter(100, 200)
}
