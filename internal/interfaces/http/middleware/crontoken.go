package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cryptogift/ledger/internal/shared/logger"
	"github.com/cryptogift/ledger/internal/shared/utils"
)

// HeaderCronSecret carries the shared secret of maintenance callers.
const HeaderCronSecret = "X-Cron-Secret"

type CronSecretMiddleware struct {
	secret string
	logger logger.Interface
}

func NewCronSecretMiddleware(secret string, logger logger.Interface) *CronSecretMiddleware {
	return &CronSecretMiddleware{
		secret: secret,
		logger: logger,
	}
}

// RequireCronSecret accepts the secret in X-Cron-Secret or as a bearer token.
// With no secret configured every request is rejected.
func (m *CronSecretMiddleware) RequireCronSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.secret == "" {
			m.logger.Warnw("cron endpoint called but no cron secret is configured", "ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusUnauthorized, "cron endpoint is disabled")
			c.Abort()
			return
		}

		provided := c.GetHeader(HeaderCronSecret)
		if provided == "" {
			parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				provided = parts[1]
			}
		}
		if provided == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing cron secret")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.secret)) != 1 {
			m.logger.Warnw("cron secret mismatch", "ip", c.ClientIP(), "path", c.Request.URL.Path)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid cron secret")
			c.Abort()
			return
		}

		c.Next()
	}
}
