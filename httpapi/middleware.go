package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	authgate "github.com/kesparza-dev/authgate"
)

// requestContext attaches the client IP and user agent to the request
// context so the engine can throttle per IP and enrich audit events.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := authgate.WithClientIP(c.Request.Context(), c.ClientIP())
		ctx = authgate.WithUserAgent(ctx, c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requestLogger emits one http-request audit record per request, after the
// response has been written.
func requestLogger(engine *authgate.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		engine.LogRequest(
			c.Request.Context(),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

// corsHeaders reflects a fixed allowed origin and short-circuits preflight
// requests.
func corsHeaders(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
