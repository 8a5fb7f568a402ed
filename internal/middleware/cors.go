package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORS sets permissive headers for local development and locked-down headers for production.
// In production only origins listed in allowedOrigins are echoed back.
func CORS(env string, allowedOrigins []string) gin.HandlerFunc {
	production := env == "production"
	return func(c *gin.Context) {
		if !production {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin := c.GetHeader("Origin"); origin != "" && lo.Contains(allowedOrigins, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
