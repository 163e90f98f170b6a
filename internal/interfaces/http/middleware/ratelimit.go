package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cryptogift/ledger/internal/infrastructure/ratelimit"
	"github.com/cryptogift/ledger/internal/shared/logger"
	"github.com/cryptogift/ledger/internal/shared/utils"
)

// RateLimiter enforces a per client IP fixed window. Counters live in the
// ledger store so all instances share them.
type RateLimiter struct {
	limiter ratelimit.RateLimiter
	scope   string
	config  ratelimit.RateLimitConfig
	logger  logger.Interface
}

func NewRateLimiter(limiter ratelimit.RateLimiter, scope string, config ratelimit.RateLimitConfig, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		scope:   scope,
		config:  config,
		logger:  logger,
	}
}

// Limit returns a Gin middleware that enforces the rate limit per client IP.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, err := rl.limiter.Allow(c.Request.Context(), rl.scope, clientIP, rl.config)
		if err != nil {
			// If the store is unavailable, allow the request to avoid blocking all traffic
			rl.logger.Warnw("rate limit check failed, allowing request", "scope", rl.scope, "client_ip", clientIP, "error", err)
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
