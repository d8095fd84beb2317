package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notetaker/pkg/logger"
)

func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Sugar.Errorw("panic recovered",
					"path", c.Request.URL.Path,
					"err", err,
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
