package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/masarmall/leasing/internal/observability/logger"
	"go.uber.org/zap"
)

const rateLimitReasonClientRate = "client-rate"

// APIRateLimit throttles each client address through the shared API limiter.
func (s *Server) APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.apiLimiter == nil || !s.apiLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		res := s.apiLimiter.Allow(ctx, c.ClientIP())
		if res == nil || res.Allowed {
			s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
			c.Next()
			return
		}

		logger.FromContext(ctx).Warn("api rate limit exceeded",
			zap.String("reason", rateLimitReasonClientRate),
			zap.String("endpoint", endpoint),
		)
		s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, rateLimitReasonClientRate)

		retryAfter := int(res.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.Header("X-Rate-Limited-Reason", rateLimitReasonClientRate)
		AbortWithError(c, ErrRateLimited)
	}
}
