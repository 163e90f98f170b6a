package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cryptogift/ledger/internal/shared/logger"
	"github.com/cryptogift/ledger/internal/shared/utils/logutil"
)

const (
	HeaderRequestID = "X-Request-ID"
	// ContextKeyRequestID holds the request id in the gin context.
	ContextKeyRequestID = "request_id"
)

// Logger assigns a request id (reusing the caller's X-Request-ID when sent)
// and writes one line per request once the handler chain returns.
func Logger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := logutil.TruncateForLog(c.GetHeader(HeaderRequestID), 64)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"bytes", c.Writer.Size(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, "query", logutil.TruncateForLog(q, logutil.MaxFieldLen))
		}
		if ua := c.Request.UserAgent(); ua != "" {
			fields = append(fields, "user_agent", logutil.TruncateForLog(ua, logutil.MaxFieldLen))
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}

		switch {
		case status >= 500:
			log.Errorw("request failed", fields...)
		case status >= 400:
			log.Warnw("request rejected", fields...)
		default:
			log.Debugw("request served", fields...)
		}
	}
}
