package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/classifieds/internal/pkg"
)

// Recovery returns a gin middleware that recovers from panics, logs the panic
// value with its stack trace and answers with the standard JSON envelope:
//
//	{"code": 500, "message": "internal server error", "data": null}
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(c.Request.Context(), "panic recovered",
					slog.Any("panic", err),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				abortWithEnvelope(c, http.StatusInternalServerError, "internal server error")
			}
		}()
		c.Next()
	}
}

// abortWithEnvelope stops the chain and writes a pkg.Response with no data.
// If a handler already started the response only the abort happens.
func abortWithEnvelope(c *gin.Context, status int, message string) {
	if c.Writer.Written() {
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(status, pkg.Response{
		Code:    status,
		Message: message,
		Data:    nil,
	})
}
