package utils

import (
	"crypto/subtle"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LoggerMiddleware logs request details
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()

		LogRequest(c.Request.Method, path, clientIP, statusCode, latency)
	}
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				LogErrorWithStack(fmt.Errorf("%v", err), debug.Stack())
				c.AbortWithStatusJSON(500, gin.H{
					"success": false,
					"message": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("RequestID", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// AdminTokenMiddleware guards operator endpoints with a shared token.
// An empty configured token disables the endpoints entirely.
func AdminTokenMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			NotFound(c, "Not found")
			c.Abort()
			return
		}
		supplied := c.GetHeader("X-Admin-Token")
		if supplied == "" {
			supplied = c.Query("token")
		}
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			LogError("Admin token mismatch from %s", c.ClientIP())
			Unauthorized(c, "Invalid admin token")
			c.Abort()
			return
		}
		c.Next()
	}
}
