package middleware

import (
	"log"
	"runtime/debug"

	"hotspotportal/utils"

	"github.com/gin-gonic/gin"
)

func EnhancedRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic serving %s %s (request %s): %v\n%s",
					c.Request.Method, c.Request.URL.Path, c.GetString(ContextRequestID), err, debug.Stack())
				utils.TrackError("http", "panic")
				utils.InternalError(c, "Internal server error")
			}
		}()
		c.Next()
	}
}
