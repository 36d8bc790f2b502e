package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout bounds every request with a context deadline of d. Store calls
// made with the request context give up once it expires. If the handler
// returns after the deadline without writing a response, the client gets a
// 408 envelope. A non-positive d disables the middleware.
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			abortWithEnvelope(c, http.StatusRequestTimeout, "request timeout")
		}
	}
}
