package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit shares one token bucket across all clients: rps tokens per second
// with room for burst. Requests that find the bucket empty are rejected with
// a 429 envelope instead of waiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	return rateLimitWith(rate.NewLimiter(rate.Limit(rps), burst))
}

func rateLimitWith(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			slog.WarnContext(c.Request.Context(), "rate limit exceeded",
				slog.String("path", c.Request.URL.Path),
				slog.String("client_ip", c.ClientIP()),
			)
			abortWithEnvelope(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
