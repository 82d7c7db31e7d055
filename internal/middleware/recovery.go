package middleware

import (
	"fmt"
	"net/http"
	"qa_forum_backend/pkg/logger"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns panics into the standard error envelope. The stack trace is
// only echoed back outside release mode.
func Recovery(release bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Log.Error("Panic recovered",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("stack", stack),
				)

				body := gin.H{
					"success": false,
					"message": "Internal server error",
				}
				if !release {
					body["error"] = fmt.Sprint(r)
					body["stack"] = stack
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, body)
			}
		}()
		c.Next()
	}
}

func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": "Route not found",
	})
}
